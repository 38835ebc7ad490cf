package handlers

import (
	"EstateHub/models"
	"EstateHub/tasks"
	"EstateHub/utils"
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type UserController struct {
	collection *mongo.Collection
	runner     *tasks.Runner
	mailer     Mailer
	federated  FederatedExchanger
	logger     *zap.Logger
}

func NewUserController(collection *mongo.Collection, runner *tasks.Runner, mailer Mailer, federated FederatedExchanger, logger *zap.Logger) *UserController {
	return &UserController{
		collection: collection,
		runner:     runner,
		mailer:     mailer,
		federated:  federated,
		logger:     logger.With(zap.String("component", "users")),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (uc *UserController) respondWithToken(c echo.Context, status int, user models.User) error {
	token, _, err := utils.GenerateJWT(user.ID, user.Email, user.Name, user.Role)
	if err != nil {
		uc.logger.Error("token generation failed", zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "Failed to generate token")
	}
	user.Password = ""
	return c.JSON(status, models.LoginResponse{Token: token, User: user})
}

func (uc *UserController) Register(c echo.Context) error {
	var req models.RegisterRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()
	email := normalizeEmail(req.Email)

	var existingUser models.User
	err := uc.collection.FindOne(ctx, bson.M{"email": email}).Decode(&existingUser)
	if err == nil {
		return errorJSON(c, http.StatusConflict, "Email already in use")
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return errorJSON(c, http.StatusInternalServerError, "Failed to check user")
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to hash password")
	}

	now := time.Now()
	user := models.User{
		ID:        primitive.NewObjectID(),
		Email:     email,
		Password:  hashedPassword,
		Name:      req.Name,
		Phone:     req.Phone,
		Role:      models.RoleMember,
		Provider:  models.ProviderPassword,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err = uc.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errorJSON(c, http.StatusConflict, "Email already in use")
		}
		return errorJSON(c, http.StatusInternalServerError, "Failed to create user")
	}

	uc.dispatchVerification(user.Email, user.Name)
	return uc.respondWithToken(c, http.StatusCreated, user)
}

func (uc *UserController) Login(c echo.Context) error {
	var req models.LoginRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	var user models.User
	err := uc.collection.FindOne(c.Request().Context(), bson.M{"email": normalizeEmail(req.Email)}).Decode(&user)
	if err != nil {
		return errorJSON(c, http.StatusUnauthorized, "Invalid email or password")
	}
	if !user.IsActive {
		return errorJSON(c, http.StatusUnauthorized, "Account is deactivated")
	}
	if user.Password == "" {
		return errorJSON(c, http.StatusUnauthorized, "This account uses Google sign-in")
	}
	if err := utils.CheckPassword(user.Password, req.Password); err != nil {
		return errorJSON(c, http.StatusUnauthorized, "Invalid email or password")
	}
	return uc.respondWithToken(c, http.StatusOK, user)
}

// GoogleSignIn exchanges an authorization code and signs the account in,
// creating it on first use.
func (uc *UserController) GoogleSignIn(c echo.Context) error {
	if uc.federated == nil {
		return errorJSON(c, http.StatusServiceUnavailable, "Google sign-in is not configured")
	}
	var req models.GoogleSignInRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()

	profile, err := uc.federated.Exchange(ctx, req.Code)
	if err != nil {
		uc.logger.Warn("google exchange failed", zap.Error(err))
		return errorJSON(c, http.StatusUnauthorized, "Google sign-in failed")
	}

	now := time.Now()
	email := normalizeEmail(profile.Email)
	filter := bson.M{"email": email}
	update := bson.M{
		"$set": bson.M{
			"avatar":         profile.Picture,
			"email_verified": profile.EmailVerified,
			"updated_at":     now,
		},
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"email":      email,
			"name":       profile.Name,
			"role":       models.RoleMember,
			"provider":   models.ProviderGoogle,
			"is_active":  true,
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var user models.User
	if err := uc.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user); err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to sync user")
	}
	if !user.IsActive {
		return errorJSON(c, http.StatusUnauthorized, "Account is deactivated")
	}
	return uc.respondWithToken(c, http.StatusOK, user)
}

func (uc *UserController) Me(c echo.Context) error {
	return uc.GetProfile(c)
}

// RequestPasswordReset always answers 202 so callers cannot probe which
// addresses are registered.
func (uc *UserController) RequestPasswordReset(c echo.Context) error {
	var req models.EmailRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	email := normalizeEmail(req.Email)

	var user models.User
	err := uc.collection.FindOne(c.Request().Context(), bson.M{"email": email}).Decode(&user)
	if err == nil && user.Password != "" {
		uc.runner.Go("password-reset-mail", func(ctx context.Context) error {
			return uc.mailer.Send(ctx, user.Email, "Reset your password",
				"Hi "+user.Name+", follow the link in this message to choose a new password.")
		})
	}
	return c.JSON(http.StatusAccepted, map[string]string{"message": "If the address is registered, a reset link is on its way"})
}

func (uc *UserController) RequestEmailVerification(c echo.Context) error {
	name, _ := c.Get("user_name").(string)
	uc.dispatchVerification(currentEmail(c), name)
	return c.JSON(http.StatusAccepted, map[string]string{"message": "Verification email sent"})
}

func (uc *UserController) dispatchVerification(email, name string) {
	if email == "" {
		return
	}
	uc.runner.Go("verification-mail", func(ctx context.Context) error {
		return uc.mailer.Send(ctx, email, "Verify your email", "Hi "+name+", please confirm this address.")
	})
}

// GetRole answers the backend-of-record role for an e-mail address.
func (uc *UserController) GetRole(c echo.Context) error {
	email := normalizeEmail(c.QueryParam("email"))
	if email == "" {
		return errorJSON(c, http.StatusBadRequest, "Email is required")
	}
	var user models.User
	err := uc.collection.FindOne(c.Request().Context(), bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return errorJSON(c, http.StatusNotFound, "User not found")
		}
		return errorJSON(c, http.StatusInternalServerError, "Failed to fetch role")
	}
	role := user.Role
	if !models.IsValidRole(role) {
		role = models.RoleMember
	}
	return c.JSON(http.StatusOK, models.RoleResponse{Role: role})
}

// UpsertUser creates the user record if absent. An existing record keeps
// its role; a new one may only start as guest or member.
func (uc *UserController) UpsertUser(c echo.Context) error {
	var req models.UpsertUserRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	email := normalizeEmail(req.Email)
	if email != normalizeEmail(currentEmail(c)) && !models.IsStaffRole(currentRole(c)) {
		return errorJSON(c, http.StatusForbidden, "Access denied")
	}

	role := req.Role
	if role != models.RoleGuest {
		role = models.RoleMember
	}
	now := time.Now()
	set := bson.M{"updated_at": now}
	if req.Name != "" {
		set["name"] = req.Name
	}
	if req.Avatar != "" {
		set["avatar"] = req.Avatar
	}
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"email":      email,
			"role":       role,
			"provider":   models.ProviderPassword,
			"is_active":  true,
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var user models.User
	if err := uc.collection.FindOneAndUpdate(c.Request().Context(), bson.M{"email": email}, update, opts).Decode(&user); err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to sync user")
	}
	user.Password = ""
	return c.JSON(http.StatusOK, user)
}

func (uc *UserController) GetProfile(c echo.Context) error {
	var user models.User
	err := uc.collection.FindOne(c.Request().Context(), bson.M{"_id": currentUserID(c)}).Decode(&user)
	if err != nil {
		return errorJSON(c, http.StatusNotFound, "User not found")
	}
	user.Password = ""
	return c.JSON(http.StatusOK, user)
}

func (uc *UserController) UpdateProfile(c echo.Context) error {
	var req models.UpdateUserRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()
	userID := currentUserID(c)

	updateDoc := bson.M{"updated_at": time.Now()}
	if req.Name != "" {
		updateDoc["name"] = req.Name
	}
	if req.Phone != "" {
		updateDoc["phone"] = req.Phone
	}
	if req.Avatar != "" {
		updateDoc["avatar"] = req.Avatar
	}
	emailChanged := false
	if email := normalizeEmail(req.Email); email != "" && email != normalizeEmail(currentEmail(c)) {
		count, err := uc.collection.CountDocuments(ctx, bson.M{"email": email})
		if err != nil {
			return errorJSON(c, http.StatusInternalServerError, "Failed to update user")
		}
		if count > 0 {
			return errorJSON(c, http.StatusConflict, "Email already in use")
		}
		updateDoc["email"] = email
		updateDoc["email_verified"] = false
		emailChanged = true
	}

	if _, err := uc.collection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": updateDoc}); err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to update user")
	}

	var user models.User
	if err := uc.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to fetch updated user")
	}
	if emailChanged {
		uc.dispatchVerification(user.Email, user.Name)
	}
	user.Password = ""
	return c.JSON(http.StatusOK, user)
}

func (uc *UserController) DeleteAccount(c echo.Context) error {
	_, err := uc.collection.DeleteOne(c.Request().Context(), bson.M{"_id": currentUserID(c)})
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to delete user")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Account deleted successfully"})
}

func (uc *UserController) GetAllUsers(c echo.Context) error {
	ctx := c.Request().Context()
	cursor, err := uc.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to fetch users")
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			continue
		}
		user.Password = ""
		users = append(users, user)
	}
	return c.JSON(http.StatusOK, users)
}

// UpdateRole changes a user's role. Only an owner may grant or revoke the
// owner role.
func (uc *UserController) UpdateRole(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid user ID")
	}
	var req models.RoleResponse
	if err := c.Bind(&req); err != nil || !models.IsValidRole(req.Role) {
		return errorJSON(c, http.StatusBadRequest, "Invalid role")
	}
	ctx := c.Request().Context()

	var target models.User
	if err := uc.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&target); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return errorJSON(c, http.StatusNotFound, "User not found")
		}
		return errorJSON(c, http.StatusInternalServerError, "Failed to fetch user")
	}
	if (req.Role == models.RoleOwner || target.Role == models.RoleOwner) && currentRole(c) != models.RoleOwner {
		return errorJSON(c, http.StatusForbidden, "Access denied")
	}

	_, err = uc.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"role": req.Role, "updated_at": time.Now()}})
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to update role")
	}
	return c.JSON(http.StatusOK, models.RoleResponse{Role: req.Role})
}

func (uc *UserController) SearchUserByEmail(c echo.Context) error {
	email := normalizeEmail(c.QueryParam("email"))
	if email == "" {
		return errorJSON(c, http.StatusBadRequest, "Email is required")
	}
	var user models.User
	err := uc.collection.FindOne(c.Request().Context(), bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return errorJSON(c, http.StatusNotFound, "User not found")
		}
		return errorJSON(c, http.StatusInternalServerError, "Failed to search user")
	}
	return c.JSON(http.StatusOK, map[string]string{"id": user.ID.Hex(), "name": user.Name})
}
