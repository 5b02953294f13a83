package middlewares

const (
	// CtxRequestID is the gin context key carrying the request correlation id.
	CtxRequestID = "request_id"
)
