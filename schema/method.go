package schema

const (
	MethodInitialize             = "initialize"
	MethodResourcesList          = "resources/list"
	MethodResourcesTemplatesList = "resources/templates/list"
	MethodResourcesRead          = "resources/read"
	MethodPromptsList            = "prompts/list"
	MethodPromptsGet             = "prompts/get"
	MethodToolsList              = "tools/list"
	MethodToolsCall              = "tools/call"
	MethodSubscribe              = "resources/subscribe"
	MethodUnsubscribe            = "resources/unsubscribe"

	MethodNotificationInitialized = "notifications/initialized"
	MethodNotificationCancel      = "notifications/cancelled"
	MethodNotificationMessage     = "notifications/message"
)
