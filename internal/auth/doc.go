// Package auth runs the browser sign-in to Oracle Code Assist.
//
// The Orchestrator drives a small state machine:
//
//	Unauthenticated -> ModeSelection -> StatePersisted -> AwaitingBrowserAuth -> Authenticated
//	Unauthenticated -> AlreadyAuthenticated -> SignedOut | StillAuthenticated
//
// Mode and base URL are written to the core with masked partial updates and
// read back before the login starts, because the core builds the
// authorization URL from them. The auth status subscription is opened
// before the login is triggered and is always stopped when the attempt
// ends. After a confirmed sign-in the default model is configured from the
// model catalog; failing that is only a warning.
//
// All process state lives in injected instances (SessionCache, the callback
// server) owned by the caller.
package auth
