// Package genai wraps the Gemini REST API for cosmo-server.
//
// # Overview
//
// The client covers exactly the three operations the dispatcher needs:
//
//   - ChatComplete: conversation window + persona -> text reply
//   - GenerateImage: prompt (style-wrapped) -> encoded image
//   - EditImage: source image + instruction -> encoded image
//
// All three POST to the generateContent endpoint:
//
//	{base_url}/models/{model}:generateContent?key={api_key}
//
// Chat and image calls may use different models; both are configured at
// construction.
//
// # Response Parts
//
// Provider responses carry loosely-typed parts: each part is either
// {text} or {inlineData: {mimeType, data}}. The scanners pick the first
// part of the kind the caller asked for and return ErrProvider when no
// recognized part exists, so malformed responses never silently produce
// empty results.
//
// # Errors
//
//   - ErrNotConfigured: no API key present; callers fail fast and the
//     health endpoint reports ai_configured=false
//   - ErrProvider: wraps every transport failure, non-200 status, safety
//     block, and empty/unrecognized response
//
// The dispatcher converts ErrProvider into a fixed fallback reply; raw
// provider errors never reach the presentation layer.
//
// # Safety
//
// Every request carries BLOCK_LOW_AND_ABOVE thresholds for all four harm
// categories. This client talks to a kids' product.
package genai
