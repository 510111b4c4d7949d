package request

// CreateGuestRequest is the request body for creating a guest player.
// An empty display name is replaced with a generated one.
type CreateGuestRequest struct {
	DisplayName string `json:"display_name"`
}

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateGameRequest is the request body for starting a game.
// Zero values select the server defaults.
type CreateGameRequest struct {
	BoardSize int    `json:"board_size,omitempty"`
	Strategy  string `json:"strategy,omitempty"`
	AIFirst   bool   `json:"ai_first,omitempty"`
}

// PlaceRequest is the request body for placing a stone
type PlaceRequest struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}
