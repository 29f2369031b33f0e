// Package server provides HTTP routing, middleware, OAuth handling, and the
// pipeline API surface.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// OAuthHandler implements the OAuth2 authorization code callback flow.
//
// The handler validates the state parameter (CSRF protection), exchanges the authorization code for tokens,
// and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// When the user runs the auth command, a temporary HTTP server starts on localhost, handles the callback,
// and shuts down after receiving the OAuth token.
//
// # Pipeline API
//
// [PipelineHandler] exposes the pipeline over HTTP for the serve command:
// job submission and polling, rule set management and preview, diff preview,
// and synchronous apply. Stages run as background jobs except apply, which
// mutates the remote library and therefore only runs on an explicit request.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
