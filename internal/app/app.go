package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	// driver for migration applying postgres.
	_ "github.com/golang-migrate/migrate/v4/database/postgres" //nolint:revive
	// driver to get migrations from files (*.sql in our case).
	_ "github.com/golang-migrate/migrate/v4/source/file" //nolint:revive
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/groph-grocer/internal/cache"
	"github.com/fsdevblog/groph-grocer/internal/config"
	"github.com/fsdevblog/groph-grocer/internal/repository/pgrepo"
	"github.com/fsdevblog/groph-grocer/internal/scheduler"
	"github.com/fsdevblog/groph-grocer/internal/service"
	"github.com/fsdevblog/groph-grocer/internal/service/psswd"
	"github.com/fsdevblog/groph-grocer/internal/transport/api"
	"github.com/fsdevblog/groph-grocer/internal/transport/api/middlewares"
	"github.com/fsdevblog/groph-grocer/internal/transport/jobs"
	"github.com/fsdevblog/groph-grocer/internal/transport/mailer"
	"github.com/fsdevblog/groph-grocer/internal/transport/messenger"
	"github.com/fsdevblog/groph-grocer/internal/transport/pricewatch"
	"github.com/fsdevblog/groph-grocer/internal/transport/webpush"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
	cacheKeyPrefix    = "grocer:"
	metricsNamespace  = "grocer"
)

type App struct {
	Config *config.Config
	Logger *logrus.Logger
}

func New(conf *config.Config, l *logrus.Logger) *App {
	return &App{
		Config: conf,
		Logger: l,
	}
}

func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.WithField("address", a.Config.RunAddress).Info("Starting app")
	conn, connErr := pgrepo.Connect(notifyCtx, pgrepo.ConnectArgs{
		DSN:           a.Config.DatabaseDSN,
		MigrationsDir: a.Config.MigrationsDir,
	}, a.Logger)
	if connErr != nil {
		return fmt.Errorf("app run: %s", connErr.Error())
	}
	defer conn.Close()

	rdb, redisErr := cache.Connect(notifyCtx, cache.Options{
		Addr:     a.Config.RedisAddr,
		Password: a.Config.RedisPassword,
		DB:       a.Config.RedisDB,
	})
	if redisErr != nil {
		return fmt.Errorf("app run: %s", redisErr.Error())
	}
	defer rdb.Close()

	unitOfWork, uowErr := initUOW(conn)
	if uowErr != nil {
		return fmt.Errorf("app run: %s", uowErr.Error())
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     a.Config.RedisAddr,
		Password: a.Config.RedisPassword,
		DB:       a.Config.RedisDB,
	}
	queueClient := asynq.NewClient(redisOpt)
	defer queueClient.Close()

	pushSender := webpush.New(webpush.VAPID{
		Subscriber: a.Config.VAPIDSubscriber,
		PublicKey:  a.Config.VAPIDPublicKey,
		PrivateKey: a.Config.VAPIDPrivateKey,
	})

	services, sErr := service.Factory(unitOfWork, service.Deps{
		Hasher:          psswd.New(a.Config.BcryptCost),
		Cache:           cache.New(rdb, cacheKeyPrefix),
		Dispatcher:      jobs.NewDispatcher(queueClient, a.Logger),
		PushSender:      pushSender,
		Logger:          a.Logger,
		JWTSecret:       []byte(a.Config.JWTSecret),
		JWTExpire:       a.Config.JWTExpire,
		AdminEmails:     a.Config.AdminEmails,
		CatalogCacheTTL: a.Config.CatalogCacheTTL,
		Checkout: service.CheckoutSettings{
			DeliveryFee:           a.Config.DeliveryFee,
			FreeDeliveryThreshold: a.Config.FreeDeliveryThreshold,
			LoyaltyEarnRate:       a.Config.LoyaltyEarnRate,
			ReferrerReward:        a.Config.ReferrerReward,
			RefereeReward:         a.Config.RefereeReward,
		},
		LoyaltyRedeemRate: a.Config.LoyaltyRedeemRate,
	})
	if sErr != nil {
		return fmt.Errorf("app run: %s", sErr.Error())
	}

	jobServer, jobsErr := a.newJobServer(redisOpt, services.NotificationService, pushSender.Enabled())
	if jobsErr != nil {
		return fmt.Errorf("app run: %s", jobsErr.Error())
	}
	if err := jobServer.Start(); err != nil {
		return fmt.Errorf("app run: %s", err.Error())
	}
	defer jobServer.Shutdown()

	campaignScheduler, schedErr := scheduler.New(services.CampaignService, a.Config.CampaignsSchedule, a.Logger)
	if schedErr != nil {
		return fmt.Errorf("app run: %s", schedErr.Error())
	}
	campaignScheduler.Start()
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		campaignScheduler.Stop(stopCtx)
	}()

	processor := pricewatch.New(services.PriceWatchService, a.Logger).
		SetInterval(a.Config.PriceWatchInterval).
		SetWorkers(5).            //nolint:mnd
		SetLimitPerIteration(100) //nolint:mnd

	// процессор должен завершиться до закрытия пула соединений и очереди.
	stopProcessor := runInBackground(notifyCtx, processor.Run)
	defer stopProcessor()

	router, routerErr := api.New(api.RouterArgs{
		Logger:              a.Logger,
		UserService:         services.UserService,
		CatalogService:      services.CatalogService,
		WishlistService:     services.WishlistService,
		CartService:         services.CartService,
		WalletService:       services.WalletService,
		PromoService:        services.PromoService,
		OrderService:        services.OrderService,
		LoyaltyService:      services.LoyaltyService,
		BlogService:         services.BlogService,
		NotificationService: services.NotificationService,
		CampaignService:     services.CampaignService,
		DashboardService:    services.DashboardService,
		DB:                  conn,
		JWTSecretKey:        []byte(a.Config.JWTSecret),
		AuthLimiter:         middlewares.NewRateLimiter(a.Config.AuthRateLimit, a.Config.AuthRateBurst),
		Metrics:             middlewares.NewMetrics(metricsNamespace),
	})
	if routerErr != nil {
		return fmt.Errorf("app run: %s", routerErr.Error())
	}

	srv := &http.Server{
		Addr:              a.Config.RunAddress,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errChan := make(chan error, 1)

	go func() {
		if runErr := srv.ListenAndServe(); runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
			errChan <- runErr
		}
	}()

	select {
	case <-notifyCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.Logger.WithError(err).Error("http server shutdown")
		}
		return notifyCtx.Err() //nolint:wrapcheck
	case err := <-errChan:
		return err
	}
}

// newJobServer собирает обработчики фоновых задач. Без ключей VAPID push задачи отбрасываются, без адреса
// вебхука не отправляются сообщения мессенджера.
func (a *App) newJobServer(
	redisOpt asynq.RedisConnOpt,
	notifications *service.NotificationService,
	pushEnabled bool,
) (*jobs.Server, error) {
	mail, err := mailer.New(a.Config.ResendAPIKey, a.Config.MailFrom, a.Config.PublicURL, a.Logger)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	if a.Config.ResendAPIKey == "" {
		a.Logger.Warn("RESEND_API_KEY is not set, e-mail delivery will fail")
	}

	var pusher jobs.Pusher
	if pushEnabled {
		pusher = notifications
	} else {
		a.Logger.Warn("VAPID keys are not set, web push is disabled")
	}

	msgr := messenger.New(a.Config.MessengerWebhookURL, a.Config.MessengerToken)

	handlers := jobs.NewHandlers(mail, pusher, msgr, a.Config.MessengerRecipient, a.Logger)
	return jobs.NewServer(redisOpt, a.Config.JobsConcurrency, handlers, a.Logger), nil
}
