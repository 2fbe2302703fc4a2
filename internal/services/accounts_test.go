package services_test

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"taskly/backend/internal/models"
	"taskly/backend/internal/services"
)

type AccountsTestSuite struct {
	suite.Suite
	db        *gorm.DB
	register  services.RegisterService
	auth      services.AuthService
	federated services.FederatedService
}

func (suite *AccountsTestSuite) SetupTest() {
	suite.db = openTestDB(suite.T())
	suite.register = services.NewRegisterService(bcrypt.MinCost)
	suite.auth = services.NewAuthService()
	suite.federated = services.NewFederatedService()
}

func (suite *AccountsTestSuite) registerUser(username, email, password string) *models.User {
	user, err := suite.register.RegisterUser(suite.db, services.RegistrationRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	suite.Require().NoError(err)
	return user
}

func (suite *AccountsTestSuite) TestRegisterUser() {
	user := suite.registerUser("alice", "alice@example.com", "hunter2hunter2")

	suite.Equal("alice@example.com", user.Email)
	suite.Equal(models.AuthMethodLocal, user.AuthMethod)
	suite.Require().NotNil(user.Username)
	suite.Equal("alice", *user.Username)
	suite.NotEmpty(user.PasswordHash)
	suite.NotEqual("hunter2hunter2", user.PasswordHash)
}

func (suite *AccountsTestSuite) TestRegisterDuplicateEmail() {
	suite.registerUser("alice", "alice@example.com", "hunter2hunter2")

	_, err := suite.register.RegisterUser(suite.db, services.RegistrationRequest{
		Username: "alice2",
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
	})
	suite.ErrorIs(err, services.ErrDuplicateEmail)

	var count int64
	suite.db.Model(&models.User{}).Where("email = ?", "alice@example.com").Count(&count)
	suite.Equal(int64(1), count)
}

func (suite *AccountsTestSuite) TestRegisterDuplicateUsername() {
	suite.registerUser("alice", "alice@example.com", "hunter2hunter2")

	_, err := suite.register.RegisterUser(suite.db, services.RegistrationRequest{
		Username: "alice",
		Email:    "other@example.com",
		Password: "hunter2hunter2",
	})
	suite.ErrorIs(err, services.ErrDuplicateUsername)
}

func (suite *AccountsTestSuite) TestRegisterNormalizesEmail() {
	user := suite.registerUser("alice", "  Alice@Example.COM ", "hunter2hunter2")
	suite.Equal("alice@example.com", user.Email)
}

func (suite *AccountsTestSuite) TestLoginUser() {
	registered := suite.registerUser("alice", "alice@example.com", "hunter2hunter2")

	user, err := suite.auth.LoginUser(suite.db, "alice@example.com", "hunter2hunter2")
	suite.Require().NoError(err)
	suite.Equal(registered.ID, user.ID)
	suite.NotNil(user.LastLoginAt)
}

func (suite *AccountsTestSuite) TestLoginWrongPassword() {
	suite.registerUser("alice", "alice@example.com", "hunter2hunter2")

	_, err := suite.auth.LoginUser(suite.db, "alice@example.com", "wrong-password")
	suite.ErrorIs(err, services.ErrInvalidCredentials)
}

func (suite *AccountsTestSuite) TestLoginUnknownAccount() {
	_, err := suite.auth.LoginUser(suite.db, "ghost@example.com", "whatever")
	suite.ErrorIs(err, services.ErrAccountNotFound)
}

func (suite *AccountsTestSuite) TestLoginFederatedOnlyAccount() {
	_, err := suite.federated.UpsertFederatedUser(suite.db, "firebase-uid-1", "bob@example.com")
	suite.Require().NoError(err)

	_, err = suite.auth.LoginUser(suite.db, "bob@example.com", "any-password")
	suite.ErrorIs(err, services.ErrFederatedOnly)
}

func (suite *AccountsTestSuite) TestFederatedUpsertCreates() {
	user, err := suite.federated.UpsertFederatedUser(suite.db, "firebase-uid-1", "Bob@Example.com")
	suite.Require().NoError(err)

	suite.Equal("bob@example.com", user.Email)
	suite.Equal(models.AuthMethodFirebase, user.AuthMethod)
	suite.Require().NotNil(user.FirebaseUID)
	suite.Equal("firebase-uid-1", *user.FirebaseUID)
	suite.NotNil(user.LastLoginAt)
}

func (suite *AccountsTestSuite) TestFederatedUpsertIsIdempotent() {
	first, err := suite.federated.UpsertFederatedUser(suite.db, "firebase-uid-1", "bob@example.com")
	suite.Require().NoError(err)

	second, err := suite.federated.UpsertFederatedUser(suite.db, "firebase-uid-1", "bob@example.com")
	suite.Require().NoError(err)

	suite.Equal(first.ID, second.ID)

	var count int64
	suite.db.Model(&models.User{}).Count(&count)
	suite.Equal(int64(1), count)
}

func (suite *AccountsTestSuite) TestFederatedUpsertRequiresEmail() {
	_, err := suite.federated.UpsertFederatedUser(suite.db, "firebase-uid-1", "")
	suite.ErrorIs(err, services.ErrMissingEmail)
}

func TestAccountsTestSuite(t *testing.T) {
	suite.Run(t, new(AccountsTestSuite))
}
