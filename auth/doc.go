// Package auth issues and checks the bearer tokens that protect the HTTP API.
//
// A token is generated once and shown to the user; only its SHA-256 hash is
// stored in configuration:
//
//	tok, err := auth.GenerateToken(auth.TokenConfig{})
//	// tok.Secret: "tn_aBc123..." (give to clients)
//	// tok.Hash:   stored as server_token_hash
//
// Requests are checked by hashing the presented token:
//
//	token, err := auth.BearerToken(r.Header.Get("Authorization"))
//	if err != nil || !auth.MatchHash(token, storedHash) {
//	    // 401
//	}
package auth
