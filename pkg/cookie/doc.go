// Package cookie is a thin wrapper over net/http cookies that centralizes
// attribute defaults (Path, SameSite, Secure, HttpOnly) so the credential
// cookie contract is enforced in one place.
//
// Values are written verbatim: the tokens stored in these cookies are
// already signed, so no additional signing or encryption layer is applied.
package cookie
