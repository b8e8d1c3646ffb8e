// Package middleware holds the gin middleware shared by the UI and the API.
//
// # Middleware Order
//
//	router.Use(middleware.RequestLogger())      // request_id + access log
//	router.Use(gin.Recovery())
//	router.Use(middleware.SecurityHeaders())
//	router.Use(middleware.CSRF(secret, secure)) // UI forms only, /api/ is exempt
//	router.Use(sessions.LoadSession())          // flash notices
//	router.Use(readOnly.Handler())              // READ_ONLY=true
//
// CSRF must run before the session middleware: gorilla/csrf replaces the
// request, and the session context has to be attached to the replacement.
package middleware
