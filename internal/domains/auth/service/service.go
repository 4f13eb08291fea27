package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"appointer/config"
	"appointer/infras/jwt"
	"appointer/infras/otel"
	"appointer/internal/domains/auth/model/dto"
	userModel "appointer/internal/domains/user/model"
	userRepo "appointer/internal/domains/user/repository"
	"appointer/shared"
	"appointer/shared/constant"
	gDto "appointer/shared/dto"
	"appointer/shared/failure"
	"appointer/shared/password"
	gRepo "appointer/shared/repository"
	"appointer/shared/timezone"
)

const msgInvalidCredentials = "invalid email or password"

type Auth interface {
	Register(ctx context.Context, req dto.RegisterRequest) (dto.LoginResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (dto.TokenResponse, error)
	ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) error
}

type serviceImpl struct {
	userRepo   userRepo.User
	cfg        *config.Config
	otel       otel.Otel
	jwtService jwt.JWT
}

func New(userRepo userRepo.User, cfg *config.Config, otel otel.Otel, jwt jwt.JWT) Auth {
	return &serviceImpl{
		userRepo:   userRepo,
		cfg:        cfg,
		otel:       otel,
		jwtService: jwt,
	}
}

func byEmail(email string) gDto.FilterGroup {
	return gDto.And(gDto.Eq(userModel.TableName, userModel.FieldEmail, email))
}

// Register creates a customer account and signs it in.
func (s *serviceImpl) Register(ctx context.Context, req dto.RegisterRequest) (res dto.LoginResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.Register")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	exists, err := s.userRepo.Exist(ctx, byEmail(req.Email))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if user exists")

		return res, failure.Storage(err)
	}

	if exists {
		return res, failure.BadRequestFromString("email already registered")
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return res, failure.BadRequest(err)
	}

	user := req.ToUserModel(hashed)

	if err = s.userRepo.Insert(ctx, user); err != nil {
		if gRepo.IsUniqueViolation(err) {
			return res, failure.BadRequestFromString("email already registered")
		}

		log.Error().Err(err).Msg("failed to create user")

		return res, failure.Storage(err)
	}

	log.Info().Str("user_id", user.ID).Msg("customer registered")

	return s.issue(user)
}

func (s *serviceImpl) Login(ctx context.Context, req dto.LoginRequest) (res dto.LoginResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.Login")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, err := s.userRepo.Get(ctx, byEmail(req.Email))
	if err != nil {
		log.Error().Err(err).Msg("failed to load user for login")

		return res, failure.Storage(err)
	}

	if user.ID == constant.Empty {
		log.Warn().Str("email", req.Email).Msg("login attempt with unknown email")

		return res, failure.Unauthorized(msgInvalidCredentials)
	}

	if err = password.Verify(req.Password, user.Password); err != nil {
		log.Warn().Str("user_id", user.ID).Msg("login attempt with wrong password")

		return res, failure.Unauthorized(msgInvalidCredentials)
	}

	if !user.Active {
		return res, failure.Forbidden("user account is deactivated")
	}

	res, err = s.issue(user)
	if err != nil {
		return res, err
	}

	fields := shared.TransformFields(dto.UpdateLastLoginRequest{LastLogin: timezone.Now()}, user.ID)
	if _, err := s.userRepo.Update(ctx, fields, shared.FilterByID(user.ID, userModel.FieldID, userModel.TableName)); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to update last login")
	}

	return res, nil
}

func (s *serviceImpl) issue(user userModel.User) (res dto.LoginResponse, err error) {
	pair, err := s.jwtService.GenerateTokenPair(user.ID, user.Email, user.Role)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate tokens")

		return res, failure.InternalError(err)
	}

	res.FromTokenPair(pair)
	res.UserID = user.ID
	res.Role = user.Role

	return res, nil
}

func (s *serviceImpl) RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (res dto.TokenResponse, err error) {
	_, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.RefreshToken")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	pair, err := s.jwtService.RefreshTokens(req.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("failed to refresh tokens")

		return res, failure.Unauthorized("invalid refresh token")
	}

	res.FromTokenPair(pair)

	return res, nil
}

func (s *serviceImpl) ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.ChangePassword")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	actor := shared.ActorFromContext(ctx)
	if actor.IsGuest() {
		return failure.Unauthorized("authentication required")
	}

	filter := shared.FilterByID(actor.UserID, userModel.FieldID, userModel.TableName)

	user, err := s.userRepo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return failure.Storage(err)
	}

	if user.ID == constant.Empty {
		return failure.NotFound("user not found")
	}

	if err = password.Verify(req.CurrentPassword, user.Password); err != nil {
		if errors.Is(err, password.ErrInvalidPassword) {
			return failure.BadRequestFromString("current password is incorrect")
		}

		return failure.InternalError(err)
	}

	hashed, err := password.Hash(req.NewPassword)
	if err != nil {
		return failure.BadRequest(err)
	}

	fields := shared.TransformFields(dto.UpdatePasswordRequest{Password: hashed}, actor.Name())
	if _, err = s.userRepo.Update(ctx, fields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update password")

		return failure.Storage(err)
	}

	return nil
}
