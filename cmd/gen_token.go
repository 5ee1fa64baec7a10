package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"CommunityBoard/config"
	"CommunityBoard/model"
	"CommunityBoard/pkg/mysql"
	"CommunityBoard/pkg/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 本地联调用：为指定用户签发 JWT，可选把用户写入 user_info
func main() {
	configPath := flag.String("config", "config.yaml", "配置文件路径")
	userUUID := flag.String("uuid", "", "用户UUID，为空时随机生成")
	deviceID := flag.String("device", "dev-local", "设备ID")
	nickname := flag.String("nickname", "", "写入 user_info 的昵称（配合 -seed）")
	email := flag.String("email", "", "写入 user_info 的邮箱（配合 -seed）")
	seed := flag.Bool("seed", false, "同时在 MySQL 中创建该用户")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}
	util.InitJWT(cfg.JWT)

	if *userUUID == "" {
		*userUUID = util.NewUUID()
	}

	if *seed {
		if err := seedUser(cfg.MySQL, *userUUID, *nickname, *email); err != nil {
			fmt.Printf("创建用户失败: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("用户已写入 user_info")
	}

	token, err := util.GenerateToken(*userUUID, *deviceID)
	if err != nil {
		fmt.Printf("签发 Token 失败: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("用户UUID: %s\n", *userUUID)
	fmt.Printf("设备ID: %s\n", *deviceID)
	fmt.Printf("Authorization: Bearer %s\n", token)
	fmt.Printf("WebSocket: /ws?token=%s&device_id=%s\n", token, *deviceID)
}

func seedUser(cfg config.MySQLConfig, userUUID, nickname, email string) error {
	db, err := mysql.Build(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = mysql.Close(db) }()

	if err := db.AutoMigrate(&model.UserInfo{}); err != nil {
		return err
	}
	if nickname == "" {
		nickname = "user-" + userUUID[:8]
	}
	user := &model.UserInfo{Uuid: userUUID, Nickname: nickname, Email: email}
	err = db.WithContext(context.Background()).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(user).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	return nil
}
