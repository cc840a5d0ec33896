// Package request is the single configured HTTP client every admin API call
// goes through.
//
// A Client joins relative paths onto a base URL, applies a fixed timeout
// (DefaultTimeout unless configured), and runs two interceptor chains:
// request interceptors before transmission and response interceptors before
// the caller sees the result. Both chains run in attach order.
//
// Successful (2xx) calls return the decoded core.Envelope. Non-2xx responses
// and transport failures are reported as *Error, which response interceptors
// may replace or recover from. There is no retry.
package request
