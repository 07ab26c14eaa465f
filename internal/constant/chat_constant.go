package constant

const (
	// NoAPIKeyReply is sent when no LLM key is configured.
	NoAPIKeyReply = "I'm here to listen. Please share what's on your mind, and I'll do my best to support you. 💜"

	// FallbackReply is sent when the LLM call fails for any other reason.
	FallbackReply = "I'm here for you. It sounds like you're going through a difficult time. " +
		"Please know that your feelings are valid. Consider reaching out to a counselor or trusted friend. " +
		"You're not alone. 💜"

	DefaultSessionTitle = "New Chat"
	SessionTitleMaxLen  = 60
)

// Auth messages returned verbatim to clients.
const (
	MsgCredentialsRequired = "Username and password required"
	MsgUsernameTaken       = "Username already exists"
	MsgUserNotFound        = "User not found"
	MsgInvalidCredentials  = "Invalid credentials"
	MsgRegistered          = "User registered successfully"
	MsgLoggedIn            = "Login successful"
	MsgLoggedOut           = "Logged out successfully"
)

const (
	ModuleAuth      = "AUTH"
	ModuleChat      = "CHAT"
	ModuleRag       = "RAG"
	ModuleCrisis    = "CRISIS"
	ModuleEmotion   = "EMOTION"
	ModuleKnowledge = "KNOWLEDGE"
	ModuleWebsocket = "WEBSOCKET"
)
