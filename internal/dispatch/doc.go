// ABOUTME: Package documentation for the dispatch package
// ABOUTME: Describes the message pipeline, branches, and failure policy

/*
Package dispatch routes each chat message through the full Cosmo
pipeline: license gate, persistence, intent classification, provider
call, and outcome persistence.

# Pipeline

Every message follows the same ordered steps:

 1. Reject empty or whitespace-only text (ErrEmptyMessage).
 2. Check the license gate. Denied requests persist nothing.
 3. Verify the provider is configured (genai.ErrNotConfigured).
 4. Persist the user turn. This happens before any provider call so a
    failed call still leaves the question in the history.
 5. Classify the message (chat, generate image, or edit image).
 6. Run the branch and persist its outcome.

From step 4 onward the request is detached from the caller's context:
a dropped connection never aborts the provider call or loses a persist.

# Branches

Chat sends the recent history window plus the persona instruction to
the provider and persists the reply as a model turn.

Generate image styles the extracted prompt, saves the result to the
gallery, and persists a fixed confirmation naming the prompt.

Edit image applies the instruction to the image under edit, saves the
result to the gallery with an "Edit: " prompt prefix, and persists a
fixed confirmation.

# Failure policy

Provider failures never surface as errors. The dispatcher persists the
fixed fallback reply as a model turn and returns it, so the kid always
gets an answer bubble. No gallery entry is written on that path.

Gate denials, missing configuration, and store failures do surface as
errors for the transport layer to map to status codes.

# Daily challenge

Challenge is an in-memory once-only flag: the first generate-image
message mentioning the challenge phrase completes it and awards the
bonus. It is never persisted and resets on restart.
*/
package dispatch
