package constants

// TaskType 任务来源
type TaskType string

const (
	TaskTypeSYSTEM TaskType = "SYSTEM" // 代码内自动注册
	TaskTypeYAML   TaskType = "YAML"   // 配置文件
	TaskTypeAPI    TaskType = "API"    // 手动触发
)
