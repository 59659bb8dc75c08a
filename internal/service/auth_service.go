package service

import (
	"context"
	"errors"
	"time"

	"boutiquepos/internal/config"
	"boutiquepos/internal/dto"
	"boutiquepos/internal/middleware"
	"boutiquepos/internal/model"
	"boutiquepos/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	CrearUsuario(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error)
	ListarUsuarios(ctx context.Context) ([]dto.UsuarioResponse, error)
	ActualizarUsuario(ctx context.Context, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error)
	DesactivarUsuario(ctx context.Context, id uuid.UUID) error

	// SucursalPorDefecto resolves the server-validated default branch for an
	// operator when a request omits sucursal_id.
	SucursalPorDefecto(ctx context.Context, usuarioID uuid.UUID) (uuid.UUID, error)
}

type authService struct {
	repo       repository.UsuarioRepository
	sucursales repository.SucursalRepository
	cfg        *config.Config
}

func NewAuthService(repo repository.UsuarioRepository, sucursales repository.SucursalRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, sucursales: sucursales, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, errors.New("credenciales invalidas")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.New("credenciales invalidas")
	}

	return s.buildTokens(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	claims := &middleware.JWTClaims{}
	token, err := jwt.ParseWithClaims(refreshToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("refresh token invalido o expirado")
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, errors.New("refresh token invalido o expirado")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil || !user.Activo {
		return nil, errors.New("usuario inactivo")
	}
	return s.buildTokens(user)
}

func (s *authService) buildTokens(user *model.Usuario) (*dto.LoginResponse, error) {
	access, err := s.generateToken(user, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refresh, err := s.generateToken(user, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		Usuario:      *usuarioToResponse(user),
	}, nil
}

func (s *authService) generateToken(user *model.Usuario, ttl time.Duration) (string, error) {
	var sucursalID *string
	if user.SucursalID != nil {
		id := user.SucursalID.String()
		sucursalID = &id
	}
	claims := middleware.JWTClaims{
		UserID:     user.ID.String(),
		Username:   user.Username,
		Rol:        user.Rol,
		SucursalID: sucursalID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *authService) CrearUsuario(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, err
	}

	user := &model.Usuario{
		Username:     req.Username,
		Nombre:       req.Nombre,
		Email:        req.Email,
		PasswordHash: string(hash),
		Rol:          req.Rol,
		Activo:       true,
	}
	if req.SucursalID != nil {
		id, err := uuid.Parse(*req.SucursalID)
		if err != nil {
			return nil, errors.New("sucursal_id invalido")
		}
		if _, err := s.sucursales.FindByID(ctx, id); err != nil {
			return nil, errors.New("sucursal no encontrada")
		}
		user.SucursalID = &id
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return usuarioToResponse(user), nil
}

func (s *authService) ListarUsuarios(ctx context.Context) ([]dto.UsuarioResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UsuarioResponse, 0, len(users))
	for i := range users {
		out = append(out, *usuarioToResponse(&users[i]))
	}
	return out, nil
}

func (s *authService) ActualizarUsuario(ctx context.Context, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Nombre != nil {
		user.Nombre = *req.Nombre
	}
	if req.Email != nil {
		user.Email = req.Email
	}
	if req.Rol != nil {
		user.Rol = *req.Rol
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), 12)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if req.SucursalID != nil {
		sid, err := uuid.Parse(*req.SucursalID)
		if err != nil {
			return nil, errors.New("sucursal_id invalido")
		}
		if _, err := s.sucursales.FindByID(ctx, sid); err != nil {
			return nil, errors.New("sucursal no encontrada")
		}
		user.SucursalID = &sid
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return usuarioToResponse(user), nil
}

func (s *authService) DesactivarUsuario(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *authService) SucursalPorDefecto(ctx context.Context, usuarioID uuid.UUID) (uuid.UUID, error) {
	user, err := s.repo.FindByID(ctx, usuarioID)
	if err != nil {
		return uuid.Nil, err
	}
	if user.SucursalID == nil {
		return uuid.Nil, ErrSucursalRequerida
	}
	return *user.SucursalID, nil
}

func usuarioToResponse(u *model.Usuario) *dto.UsuarioResponse {
	var sucursalID *string
	if u.SucursalID != nil {
		id := u.SucursalID.String()
		sucursalID = &id
	}
	return &dto.UsuarioResponse{
		ID:         u.ID.String(),
		Username:   u.Username,
		Nombre:     u.Nombre,
		Email:      u.Email,
		Rol:        u.Rol,
		SucursalID: sucursalID,
		Activo:     u.Activo,
	}
}
