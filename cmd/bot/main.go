package main

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"tdbot/internal/alerts"
	"tdbot/internal/broker/rest"
	"tdbot/internal/broker/stream"
	"tdbot/internal/config"
	"tdbot/internal/engine"
	"tdbot/internal/logger"
	"tdbot/internal/notify"
	"tdbot/internal/records"
	"time"
)

func main() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logger.New(logger.Config{
		Level:      cfg.Runtime.Log.Level,
		Format:     cfg.Runtime.Log.Format,
		Output:     cfg.Runtime.Log.File,
		MaxSize:    cfg.Runtime.Log.MaxSize,
		MaxBackups: cfg.Runtime.Log.MaxBackups,
		MaxAge:     cfg.Runtime.Log.MaxAge,
		Compress:   cfg.Runtime.Log.Compress,
	})

	logger.Info("Бот запущен.")

	client := rest.New(cfg.Broker.BaseUrl, cfg.Broker.AuthUrl, cfg.Broker.ClientKey, cfg.Broker.RefreshToken, cfg.Broker.AccountID, logger)
	journal := records.NewJournal(cfg.Runtime.Journal, logger)
	notifier := notify.Multi{notify.NewLogNotifier(logger), journal}
	eng := engine.New(cfg, client, notifier, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := run(ctx, client, eng, logger); err != nil {
			logger.WithError(err).Fatal("Стрим завершился с ошибкой.")
		}
	}()

	go readAlerts(ctx, eng, logger)

	<-sigCh

	cancel()

	logger.Info("Бот остановлен.")
}

func run(ctx context.Context, client *rest.Client, eng *engine.Engine, log *logger.Logger) error {
	principals, err := client.GetUserPrincipals(ctx, "streamerConnectionInfo,streamerSubscriptionKeys")
	if err != nil {
		return err
	}

	credentials, err := rest.StreamCredentials(principals)
	if err != nil {
		return err
	}

	subscriptionKey := ""
	if len(principals.StreamerSubscriptionKeys.Keys) > 0 {
		subscriptionKey = principals.StreamerSubscriptionKeys.Keys[0].Key
	}

	sess := stream.New(
		"wss://"+principals.StreamerInfo.StreamerSocketURL+"/ws",
		stream.Principal{
			AccountID:       principals.Accounts[0].AccountID,
			AppID:           principals.StreamerInfo.AppID,
			Token:           principals.StreamerInfo.Token,
			SubscriptionKey: subscriptionKey,
		},
		credentials,
		log,
	)

	if err := sess.Connect(ctx); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sess.Unsubscribe(shutdownCtx, "ACCT_ACTIVITY"); err != nil {
			log.WithError(err).Debug("Отписка при остановке не прошла.")
		}
		sess.Close()
	}()

	sess.QualityOfService("0")
	sess.AccountActivity()
	if err := sess.FlushRequests(); err != nil {
		return err
	}

	eng.Run(ctx, sess.Events())
	return nil
}

func readAlerts(ctx context.Context, eng *engine.Engine, log *logger.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var alert alerts.Alert
		if err := json.Unmarshal(line, &alert); err != nil {
			log.WithError(err).Warn("Не удалось разобрать алерт со stdin.")
			continue
		}
		eng.HandleAlert(ctx, alert)
	}
}
