// Package intent classifies free-text chat messages into one of three
// request kinds: plain chat, image generation, or image edit.
//
// Classification is a pure substring check over a lower-cased copy of
// the input. Edit intent requires that the caller currently has an image
// under edit and takes priority over generation intent in that state.
// Generation prompts have their trigger phrases stripped; edit prompts
// carry the original text verbatim since the whole sentence is the edit
// instruction.
package intent
