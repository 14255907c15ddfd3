package errors

// Error code constants returned in API responses.
// Format: CATEGORY_SPECIFIC_DETAIL; the catalog frontend maps these to
// user-facing messages.

const (
	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Products (PRODUCT_) ====================
	ProductNotFound          = "PRODUCT_NOT_FOUND"
	ProductIdentifierExists  = "PRODUCT_IDENTIFIER_EXISTS"
	ProductIdentifierTooLong = "PRODUCT_IDENTIFIER_TOO_LONG"
	ProductNotParent         = "PRODUCT_NOT_PARENT"

	// ==================== Variants (VARIANT_) ====================
	VariantNotFound     = "VARIANT_NOT_FOUND"
	VariantAxisRequired = "VARIANT_AXIS_REQUIRED" // at least one color and one size
	VariantInUse        = "VARIANT_IN_USE"        // referenced by a bundle/set
	VariantAxisLocked   = "VARIANT_AXIS_LOCKED"   // axis value still referenced by a variant
	VariantColorUnknown = "VARIANT_COLOR_UNKNOWN"

	// ==================== Templates (TEMPLATE_) ====================
	TemplateRowNotFound   = "TEMPLATE_ROW_NOT_FOUND"
	TemplateLabelRequired = "TEMPLATE_LABEL_REQUIRED"

	// ==================== Identity (CODE_) ====================
	CodeSpaceExhausted = "CODE_SPACE_EXHAUSTED" // code generation retry ceiling reached

	// ==================== Currencies (CURRENCY_) ====================
	CurrencyNotFound   = "CURRENCY_NOT_FOUND"
	CurrencyFeedFailed = "CURRENCY_FEED_FAILED"

	// ==================== Marketplaces (MARKETPLACE_) ====================
	MarketplaceNotFound = "MARKETPLACE_NOT_FOUND"
	ListingNotFound     = "LISTING_NOT_FOUND"

	// ==================== Stickers (STICKER_) ====================
	StickerNotFound     = "STICKER_NOT_FOUND"
	StickerExportFailed = "STICKER_EXPORT_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)
