// Package middleware groups the fiber middleware installed by the start command.
//
// Subpackages:
//   - rayid: tags each request with an X-Ray-ID (reusing the caller's when sent)
//     so request logs and responses can be correlated through logger.WithRayID.
//   - auth: requires the configured API key in X-API-Key or a Bearer header.
//
// rayid is installed first so even rejected requests carry an id.
package middleware
