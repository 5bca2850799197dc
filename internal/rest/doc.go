// Package rest is the typed HTTP client for the back-office auth API. It
// owns request construction, bearer-header handling, and decoding of error
// envelopes into [APIError] values; the authcore client maps those onto its
// public error taxonomy.
//
// Sessions responses are returned as raw bytes on purpose: their wire shape
// varies and the session package performs the normalization.
package rest
