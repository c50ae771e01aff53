package constants

import "time"

// Storage keys, namespaced by the store (e.g. "app_access_token").
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

const (
	DefaultNamespace      = "app"
	DefaultRequestTimeout = 15 * time.Second
	DefaultRefreshSkew    = 30 * time.Second
	DefaultSkillsCacheTTL = 10 * time.Minute

	DefaultAvatarMaxBytes = 5 << 20 // 5 MB
	DefaultAvatarMaxEdge  = 512
	DefaultAvatarQuality  = 85
)
