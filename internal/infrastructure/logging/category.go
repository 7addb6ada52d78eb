package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	General         Category = "General"
	IO              Category = "IO"
	Internal        Category = "Internal"
	MongoDB         Category = "MongoDB"
	RabbitMQ        Category = "RabbitMQ"
	WebSocket       Category = "WebSocket"
	Dispatch        Category = "Dispatch"
	Validation      Category = "Validation"
	RequestResponse Category = "RequestResponse"
	Prometheus      Category = "Prometheus"
	Tracing         Category = "Tracing"
)

const (
	// General
	Startup         SubCategory = "Startup"
	Shutdown        SubCategory = "Shutdown"
	RateLimiting    SubCategory = "RateLimiting"
	ExternalService SubCategory = "ExternalService"

	// Store
	Connect SubCategory = "Connect"
	Insert  SubCategory = "Insert"
	Select  SubCategory = "Select"
	Update  SubCategory = "Update"

	// Rooms
	Join       SubCategory = "Join"
	Leave      SubCategory = "Leave"
	Disconnect SubCategory = "Disconnect"
	Emit       SubCategory = "Emit"

	// Messaging
	Publish SubCategory = "Publish"
	Consume SubCategory = "Consume"
)

const (
	AppName      ExtraKey = "AppName"
	LoggerName   ExtraKey = "Logger"
	ClientIp     ExtraKey = "ClientIp"
	HostIp       ExtraKey = "HostIp"
	Method       ExtraKey = "Method"
	StatusCode   ExtraKey = "StatusCode"
	BodySize     ExtraKey = "BodySize"
	Path         ExtraKey = "Path"
	Latency      ExtraKey = "Latency"
	RequestBody  ExtraKey = "RequestBody"
	ResponseBody ExtraKey = "ResponseBody"
	ErrorMessage ExtraKey = "ErrorMessage"
	RideID       ExtraKey = "RideId"
	ConnID       ExtraKey = "ConnId"
	Event        ExtraKey = "Event"
	Status       ExtraKey = "Status"
	Delivered    ExtraKey = "Delivered"
)
