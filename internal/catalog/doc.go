// Package catalog lists the models offered by the Code Assist API.
//
// The catalog is only consulted after sign-in: requests carry the stored
// credential as a bearer token and an opc-request-id correlation header.
package catalog
