package main

import (
	"context"
	"flag"

	"Campus_Community/internal/config"
	"Campus_Community/internal/handler"
	"Campus_Community/internal/lifecycle"
	"Campus_Community/internal/model"
	"Campus_Community/internal/notify"
	"Campus_Community/internal/pkg"
	"Campus_Community/internal/repository/mysql"
	"Campus_Community/internal/repository/redis"
	"Campus_Community/internal/router"
	"Campus_Community/internal/search"
	"Campus_Community/internal/service"
	"Campus_Community/internal/storage"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	flag.Parse()

	cfg := config.Load(*configPath)

	log, sync := pkg.NewLogger(cfg.Log.Level, cfg.Log.JSON, cfg.Log.Filename)
	defer sync()

	pkg.SetJWTSecrets(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret)

	db, err := mysql.InitDB(cfg.DB.DSN, cfg.DB.MaxOpenConns, cfg.DB.MaxIdleConns, cfg.DB.LogLevel)
	if err != nil {
		log.Fatal("mysql init failed", zap.Error(err))
	}

	// 自动建表（开发阶段 OK）
	if cfg.DB.AutoMigrate {
		err = db.AutoMigrate(
			&model.User{},
			&model.Group{},
			&model.GroupMember{},
			&model.Listing{},
			&model.Thread{},
			&model.Post{},
			&model.Attachment{},
			&model.Conversation{},
			&model.Message{},
			&model.NotifyOutbox{},
		)
		if err != nil {
			log.Fatal("auto migrate failed", zap.Error(err))
		}
	}

	if err = redis.Init(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		log.Fatal("redis init failed", zap.Error(err))
	}
	defer redis.Close()

	blobs := storage.NewLocalStore(cfg.Upload.Root)
	lc := lifecycle.NewManager(db, blobs, log)

	searchCfg := search.Params{
		MaxResults:   cfg.Search.MaxResults,
		SuggestCount: cfg.Search.SuggestCount,
	}
	smtpCfg := pkg.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}

	emailSvc := service.NewEmailService(smtpCfg)
	userSvc := service.NewUserService(lc, emailSvc, searchCfg)
	groupSvc := service.NewGroupService(lc)
	listingSvc := service.NewListingService(lc, searchCfg)
	threadSvc := service.NewThreadService(lc, searchCfg)
	messageSvc := service.NewMessageService(lc, log)

	// outbox 投递：配了 kafka 走 kafka，没配退回日志
	sender := notify.LogSender(log)
	if cfg.Kafka.Enable {
		producer, perr := pkg.NewKafkaProducer(pkg.KafkaConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		})
		if perr != nil {
			log.Fatal("kafka init failed", zap.Error(perr))
		}
		defer producer.Close()
		sender = notify.KafkaSender(producer)
	}
	relayCtx, relayCancel := context.WithCancel(context.Background())
	defer relayCancel()
	go notify.NewRelayer(db, sender, log).Run(relayCtx)

	r := router.InitRouter(router.Handlers{
		User:    handler.NewUserHandler(userSvc, emailSvc),
		Group:   handler.NewGroupHandler(groupSvc),
		Listing: handler.NewListingHandler(listingSvc),
		Thread:  handler.NewThreadHandler(threadSvc),
		Message: handler.NewMessageHandler(messageSvc),
	}, log)

	log.Info("server starting", zap.String("addr", cfg.HTTP.Addr))
	if err = r.Run(cfg.HTTP.Addr); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}
