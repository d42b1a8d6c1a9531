package models

// JWTClaims represents the claims extracted from a session access token
type JWTClaims struct {
	Sub   string `json:"sub"`   // Subject (auth user ID)
	Email string `json:"email"` // User email
	Role  string `json:"role"`  // Auth role, "authenticated" for signed-in users
	Exp   int64  `json:"exp"`   // Expiration time
	Iat   int64  `json:"iat"`   // Issued at
	Iss   string `json:"iss"`   // Issuer
	Aud   string `json:"aud"`   // Audience
}
