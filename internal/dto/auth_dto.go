package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type CrearUsuarioRequest struct {
	Username   string  `json:"username"    validate:"required,min=3,max=60"`
	Nombre     string  `json:"nombre"      validate:"required,min=2,max=120"`
	Email      *string `json:"email"       validate:"omitempty,email"`
	Password   string  `json:"password"    validate:"required,min=8"`
	Rol        string  `json:"rol"         validate:"required,oneof=cajero supervisor administrador"`
	SucursalID *string `json:"sucursal_id" validate:"omitempty,uuid"`
}

type ActualizarUsuarioRequest struct {
	Nombre     *string `json:"nombre"      validate:"omitempty,min=2,max=120"`
	Email      *string `json:"email"       validate:"omitempty,email"`
	Password   *string `json:"password"    validate:"omitempty,min=8"`
	Rol        *string `json:"rol"         validate:"omitempty,oneof=cajero supervisor administrador"`
	SucursalID *string `json:"sucursal_id" validate:"omitempty,uuid"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LoginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	Usuario      UsuarioResponse `json:"usuario"`
}

type UsuarioResponse struct {
	ID         string  `json:"id"`
	Username   string  `json:"username"`
	Nombre     string  `json:"nombre"`
	Email      *string `json:"email"`
	Rol        string  `json:"rol"`
	SucursalID *string `json:"sucursal_id"`
	Activo     bool    `json:"activo"`
}
