// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess       = "success"
	KeyError         = "error"
	KeyInternalError = "internal_error"
	KeyRateLimited   = "rate_limited"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthRegisterSuccess    = "auth.register_success"

	// User Management
	KeyUserProfileUpdated  = "user.profile_updated"
	KeyUserPasswordChanged = "user.password_changed"
	KeyUserNotFound        = "user.not_found"

	// Products
	KeyProductNotFound = "product.not_found"

	// Substitutes
	KeySubstituteSaved        = "substitute.saved"
	KeySubstituteAlreadySaved = "substitute.already_saved"
	KeySubstituteDeleted      = "substitute.deleted"
	KeySubstituteNotFound     = "substitute.not_found"
	KeySubstituteSameProduct  = "substitute.same_product"
	KeySubstituteNotOwner     = "substitute.not_owner"

	// Reviews
	KeyReviewCreated       = "review.created"
	KeyReviewUpdated       = "review.updated"
	KeyReviewDeleted       = "review.deleted"
	KeyReviewNotFound      = "review.not_found"
	KeyReviewNotOwner      = "review.not_owner"
	KeyReviewAlreadyExists = "review.already_exists"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"
	KeyValidationTooShort = "validation.too_short"
	KeyValidationTooLong  = "validation.too_long"
	KeyValidationEmail    = "validation.invalid_email"
	KeyValidationPassword = "validation.invalid_password"

	// Search
	KeySearchNoResults    = "search.no_results"
	KeySearchResultsFound = "search.results_found"
)
