package models

// CredentialUser 凭证中的用户信息
type CredentialUser struct {
	ID    uint   `json:"id"`              // 用户ID
	Name  string `json:"name,omitempty"`  // 昵称
	Email string `json:"email,omitempty"` // 邮箱
	Role  string `json:"role,omitempty"`  // 角色
}

// Credential 本地持久化的登录凭证（唯一规范格式）
type Credential struct {
	Token string         `json:"token"` // Bearer token（JWT）
	User  CredentialUser `json:"user"`  // 用户信息
}
