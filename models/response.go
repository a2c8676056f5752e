package models

// APIResponse 표준 API 응답 구조
type APIResponse struct {
	Status  string      `json:"status"` // success, error
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
	// CurrentPukIndex INVALID_RECOVERY_CODE 응답에서만 채워진다
	CurrentPukIndex *int64 `json:"current_recovery_puk_index,omitempty"`
}

// SuccessResponse 성공 응답 생성
func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	}
}

// ErrorResponse 에러 응답 생성
func ErrorResponse(message string, err error) APIResponse {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	return APIResponse{
		Status:  "error",
		Message: message,
		Error:   errMsg,
	}
}

// CodedErrorResponse 에러 코드가 포함된 응답 생성
func CodedErrorResponse(code, message string, err error) APIResponse {
	resp := ErrorResponse(message, err)
	resp.Code = code
	return resp
}
