package xerr

const (
	SERVER_COMMON_ERROR = 100001
	REQUEST_PARAM_ERROR = 100002
	DB_ERROR            = 100004

	CONFIG_ERROR    = 200001 // 缺少密钥或数据库配置，致命
	PROVIDER_ERROR  = 200002 // 头条接口请求失败，仅影响单个 topic
	RUN_IN_PROGRESS = 200003 // 另一个抓取任务正在执行
)
