// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini provides the HTTP client for the Gemini generateContent API.
//
// The client supports two generation modes: free-form markdown for section
// bodies, and schema-constrained JSON for document outlines. Requests are
// throttled locally and transient failures are retried with backoff.
//
// # Key Types
//
//   - Client: Thread-safe API client with throttling and retries
//   - ClientConfig: Endpoint, model, timeout, and retry settings
//   - ClientError: Typed errors (Unauthorized, RateLimited, Blocked, ...)
//
// # Usage
//
//	client := gemini.NewClient(apiKey)
//	outline, err := client.GenerateStructured(ctx, planPrompt)
//	body, err := client.GenerateText(ctx, sectionPrompt)
//
// Use the IsUnauthorized, IsRateLimited, IsBlocked, and IsTimeout helpers
// to branch on failure categories.
package gemini
