package model

// User is the last-known authenticated identity of the console.  It is
// derived from the backend session (access token claims and /auth/me)
// and persisted so the console can render the signed-in state after a
// restart without a round trip.
//
// Fields:
//  UserID       – backend user UUID (token subject).
//  Email        – login email.
//  RestaurantID – restaurant owned by the user, empty until resolved.
type User struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	RestaurantID string `json:"restaurant_id,omitempty"`
}

// Credentials is the login payload forwarded to the backend.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
