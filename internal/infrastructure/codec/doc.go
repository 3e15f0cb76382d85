// Package codec implements the bidirectional translators between the
// canonical RSA parameter model and its wire encodings: PKCS#1, PKCS#8,
// X.509 SubjectPublicKeyInfo and the legacy Microsoft CAPI key blob. It also
// hosts the negotiator that adapts parameter byte lengths to the legacy
// blob's fixed layout.
package codec
