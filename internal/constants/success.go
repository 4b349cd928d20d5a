package constants

import "net/http"

// APISuccess represents a standardized API success response with code and HTTP status.
// Use these predefined success constants for consistent API responses across the application.
type APISuccess struct {
	Code   string
	Status int
}

// Link-related success responses
var (
	SuccessLinksFound = APISuccess{
		Code:   CodeLinksFound,
		Status: http.StatusOK,
	}
	SuccessLinkCreated = APISuccess{
		Code:   CodeLinkCreated,
		Status: http.StatusCreated,
	}
	SuccessLinkUpdated = APISuccess{
		Code:   CodeLinkUpdated,
		Status: http.StatusOK,
	}
	SuccessLinkDeleted = APISuccess{
		Code:   CodeLinkDeleted,
		Status: http.StatusOK,
	}
	SuccessClickRecorded = APISuccess{
		Code:   CodeClickRecorded,
		Status: http.StatusOK,
	}
)

// Category-related success responses
var (
	SuccessCategoriesFound = APISuccess{
		Code:   CodeCategoriesFound,
		Status: http.StatusOK,
	}
	SuccessCategoryCreated = APISuccess{
		Code:   CodeCategoryCreated,
		Status: http.StatusCreated,
	}
	SuccessCategoryUpdated = APISuccess{
		Code:   CodeCategoryUpdated,
		Status: http.StatusOK,
	}
	SuccessCategoryDeleted = APISuccess{
		Code:   CodeCategoryDeleted,
		Status: http.StatusOK,
	}
)

// Stats and auth success responses
var (
	SuccessStatsFound = APISuccess{
		Code:   CodeStatsFound,
		Status: http.StatusOK,
	}
	SuccessLogin = APISuccess{
		Code:   CodeLoginOK,
		Status: http.StatusOK,
	}
)
