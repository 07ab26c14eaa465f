package serverutils

import "github.com/gofiber/fiber/v2"

type BaseResponse[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func Response[T any](code int, message string, data T) BaseResponse[T] {
	return BaseResponse[T]{
		Success: code < fiber.StatusBadRequest,
		Code:    code,
		Message: message,
		Data:    data,
	}
}

func SuccessResponse[T any](message string, data T) BaseResponse[T] {
	return Response(fiber.StatusOK, message, data)
}

func ErrorResponse(code int, message string) BaseResponse[any] {
	return Response[any](code, message, nil)
}
