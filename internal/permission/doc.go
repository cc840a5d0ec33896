// Package permission turns the server's menu tree into client-side routes.
//
// RoutesFromMenuTree is a pure transform: it never modifies its input and
// returns a new tree of identical shape. Components resolve either to the
// shared Layout placeholder or to a lazily loaded View. Store caches the
// routes generated for the logged-in user until logout.
package permission
