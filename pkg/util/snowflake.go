package util

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	nodeOnce sync.Once
	node     *snowflake.Node
	nodeErr  error
)

// InitSnowflake 初始化雪花节点，node 取值 0~1023
func InitSnowflake(nodeID int64) error {
	nodeOnce.Do(func() {
		node, nodeErr = snowflake.NewNode(nodeID)
	})
	return nodeErr
}

// NextID 生成分布式唯一 ID；未初始化时使用 0 号节点
func NextID() int64 {
	if node == nil {
		_ = InitSnowflake(0)
	}
	if node == nil {
		return 0
	}
	return node.Generate().Int64()
}
