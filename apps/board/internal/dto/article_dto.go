package dto

// ==================== 帖子相关 DTO ====================

// CreateArticleRequest 发帖请求（multipart，附件字段为 files）
type CreateArticleRequest struct {
	Title   string `form:"title" binding:"required,min=1,max=200"` // 标题
	Content string `form:"content" binding:"required"`             // 正文
}

// UpdateArticleRequest 编辑帖子请求（multipart）。
// referenced 为正文之外额外声明的引用令牌，正文中的令牌由服务端解析。
type UpdateArticleRequest struct {
	Title   string `form:"title" binding:"required,min=1,max=200"`
	Content string `form:"content" binding:"required"`
}

// AttachmentItem 附件信息
type AttachmentItem struct {
	Token       string `json:"token"`       // 引用令牌
	FileName    string `json:"fileName"`    // 原始文件名
	Location    string `json:"location"`    // 存储路径
	ContentType string `json:"contentType"` // 文件类型
	Size        int64  `json:"size"`        // 文件大小（字节）
	IsTemporary bool   `json:"isTemporary"` // 是否为编辑中的临时附件
}

// ArticleResponse 帖子详情
type ArticleResponse struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	Content     string            `json:"content"`
	AuthorUUID  string            `json:"authorUuid"`
	ViewCount   int64             `json:"viewCount"`
	LikeCount   int64             `json:"likeCount"`
	CreatedAt   int64             `json:"createdAt"` // 毫秒时间戳
	UpdatedAt   int64             `json:"updatedAt"` // 毫秒时间戳
	Attachments []*AttachmentItem `json:"attachments"`
}

// ArticleListResponse 帖子列表
type ArticleListResponse struct {
	Items []*ArticleResponse `json:"items"`
}

// UploadAttachmentsResponse 编辑中上传临时附件的响应
type UploadAttachmentsResponse struct {
	Items []*AttachmentItem `json:"items"`
}

// FinalizeEditResponse 完成编辑
type FinalizeEditResponse struct {
	Promoted int64 `json:"promoted"` // 转为正式附件的数量
	Removed  int   `json:"removed"`  // 未被引用而丢弃的临时附件数量
}

// CancelEditResponse 取消编辑
type CancelEditResponse struct {
	Removed int `json:"removed"` // 被丢弃的临时附件数量
}

// ==================== 互动相关 DTO ====================

// AddCommentRequest 评论请求
type AddCommentRequest struct {
	Content  string `json:"content" binding:"required,min=1,max=1000"`
	ParentID int64  `json:"parentId" binding:"omitempty,min=0"` // 回复的评论ID，0 表示直接评论帖子
}

// CommentResponse 评论信息
type CommentResponse struct {
	ID         int64  `json:"id"`
	ArticleID  int64  `json:"articleId"`
	AuthorUUID string `json:"authorUuid"`
	ParentID   int64  `json:"parentId"`
	Content    string `json:"content"`
	CreatedAt  int64  `json:"createdAt"`
}

// LikeResponse 点赞切换结果
type LikeResponse struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"likeCount"`
}
