// Package authapi exposes the portal's authentication operations over a
// single HTTP endpoint. An action discriminator in the merged query/body
// payload selects the operation; every response uses the same envelope.
// Session tokens are accepted from the payload, the Authorization bearer
// header, or a cookie, in that order.
package authapi
