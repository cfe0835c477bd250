package controllers

import _ "github.com/Surf-N-Code/padel-booking/internal/models"

// ListGames godoc
// @Summary      List games
// @Description  Returns games scheduled in [from, to], ordered by date. Defaults to the next 14 days. With id set, returns that game only (or an empty list)
// @Tags         games
// @Produce      json
// @Param        from  query     string  false  "Window start, RFC3339 or YYYY-MM-DD"
// @Param        to    query     string  false  "Window end, RFC3339 or YYYY-MM-DD"
// @Param        id    query     string  false  "Single game id"
// @Success      200   {array}   controllers.GameResponse
// @Failure      400   {string}  string
// @Failure      500   {string}  string
// @Router       /games [get]
func ListGames() {}

// GetGameByID godoc
// @Summary      Get a game
// @Tags         games
// @Produce      json
// @Param        id   path      string  true  "Game id"
// @Success      200  {object}  controllers.GameResponse
// @Failure      404  {string}  string
// @Router       /games/{id} [get]
func GetGameByID() {}

// CreateGame godoc
// @Summary      Create a game
// @Description  Creates a game with up to four initial players. Users favoring the venue are notified on Telegram
// @Tags         games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        game  body      controllers.CreateGameRequest  true  "Game"
// @Success      201   {object}  controllers.GameResponse
// @Failure      400   {string}  string
// @Failure      401   {string}  string
// @Router       /games [post]
func CreateGame() {}

// JoinGame godoc
// @Summary      Join a game
// @Description  Adds the caller (or an anonymous guest) to the roster. Resending the caller's own player id is a no-op. Fails with 409 when the game already has four players, the caller is already on it, or the player id belongs to someone else
// @Tags         games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                   true  "Game id"
// @Param        body  body      controllers.JoinRequest  true  "Player"
// @Success      200   {object}  map[string]interface{}
// @Failure      404   {string}  string
// @Failure      409   {string}  string
// @Router       /games/{id}/join [post]
func JoinGame() {}

// LeaveGame godoc
// @Summary      Leave a game
// @Description  Removes a player by id. Only that player's user or the game's creator may do so. Leaving twice is not an error
// @Tags         games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                    true  "Game id"
// @Param        body  body      controllers.LeaveRequest  true  "Player id"
// @Success      200   {object}  map[string]bool
// @Failure      401   {string}  string
// @Failure      403   {string}  string
// @Router       /games/{id}/leave [post]
func LeaveGame() {}

// IsPlayer godoc
// @Summary      Check roster membership
// @Tags         games
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Game id"
// @Success      200  {object}  controllers.IsPlayerResponse
// @Router       /games/{id}/players/me [get]
func IsPlayer() {}

// ListVenues godoc
// @Summary      List venues
// @Tags         venues
// @Produce      json
// @Success      200  {array}  models.Venue
// @Router       /venues [get]
func ListVenues() {}

// ImportVenues godoc
// @Summary      Replace the venue directory
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        venues  body      []models.Venue  true  "Venues"
// @Success      200     {array}   models.Venue
// @Failure      403     {string}  string
// @Router       /admin/venues [post]
func ImportVenues() {}

// RenameVenue godoc
// @Summary      Rename a venue
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                          true  "Venue id"
// @Param        body  body      controllers.RenameVenueRequest  true  "Label"
// @Success      200   {object}  models.Venue
// @Failure      404   {string}  string
// @Router       /admin/venues/{id} [put]
func RenameVenue() {}

// Register godoc
// @Summary      Register
// @Description  Creates the SSO account and the padel profile. telegramId links the chat the user came from
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      controllers.RegisterRequest  true  "Account"
// @Success      201   {object}  controllers.RegisterResponse
// @Failure      409   {string}  string
// @Router       /auth/register [post]
func Register() {}

// Login godoc
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      controllers.LoginRequest  true  "Credentials"
// @Success      200   {object}  controllers.LoginResponse
// @Failure      401   {string}  string
// @Router       /auth/login [post]
func Login() {}

// GetProfile godoc
// @Summary      Current user profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  controllers.ProfileResponse
// @Router       /user/profile [get]
func GetProfile() {}

// UpdateProfile godoc
// @Summary      Update the current user profile
// @Description  Empty fields keep their value. favoriteVenues replaces the list when present
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      controllers.UpdateProfileRequest  true  "Profile"
// @Success      200   {object}  controllers.ProfileResponse
// @Router       /user/profile [put]
func UpdateProfile() {}
