package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// ResumeModulePrefix 简历模块
	ResumeModulePrefix = "resume"
	// SearchModulePrefix 搜索模块
	SearchModulePrefix = "search"

	// EntityProfile 简历画像实体
	EntityProfile = "profile"
	// EntitySession 搜索会话实体
	EntitySession = "session"
	// EntityLock 分布式锁实体
	EntityLock = "lock"

	// KeyResumeProfile 简历画像缓存 (STRING, JSON)
	// 格式: app:resume:profile:{resumeID}
	KeyResumeProfile = AppPrefix + ":" + ResumeModulePrefix + ":" + EntityProfile + ":%s"

	// KeySearchSession 聚合搜索结果缓存 (STRING, JSON)
	// 格式: app:search:session:{queryHash}
	KeySearchSession = AppPrefix + ":" + SearchModulePrefix + ":" + EntitySession + ":%s"

	// KeySearchLock 聚合搜索分布式锁 (STRING)
	// 格式: app:search:lock:{queryHash}
	KeySearchLock = AppPrefix + ":" + SearchModulePrefix + ":" + EntityLock + ":%s"
)
