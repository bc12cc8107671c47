package log

type Action = string

const (
	ActionResolveRef   Action = "ResolveRef"
	ActionFetch        Action = "Fetch"
	ActionScan         Action = "Scan"
	ActionClassify     Action = "Classify"
	ActionEnqueue      Action = "Enqueue"
	ActionDispatch     Action = "Dispatch"
	ActionDeliver      Action = "Deliver"
	ActionCleanup      Action = "Cleanup"
	ActionHTTP         Action = "HTTP"
)
