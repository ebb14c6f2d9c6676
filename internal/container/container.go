package container

import (
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/shurl-web/internal/activity"
	"github.com/serroba/shurl-web/internal/api"
	"github.com/serroba/shurl-web/internal/health"
	"github.com/serroba/shurl-web/internal/messaging"
	"github.com/serroba/shurl-web/internal/middleware"
	"github.com/serroba/shurl-web/internal/session"
	"github.com/serroba/shurl-web/internal/view"
	"github.com/serroba/shurl-web/internal/web"
	"go.uber.org/zap"
)

// ActivityConsumerGroup is the redis consumer group reading activity streams.
const ActivityConsumerGroup = "activity"

var errNoRedis = errors.New("redis address not configured")

type Options struct {
	Port        int    `default:"3000"                  help:"Port to listen on"                                        short:"p"`
	APIURL      string `default:"http://localhost:8080" help:"Base URL of the shortener API"                            name:"api-url"      short:"a"`
	RedisAddr   string `default:""                      help:"Redis address for activity events; in process when empty" name:"redis-addr"   short:"r"`
	SessionTTL  int    `default:"30"                    help:"Minutes of inactivity before a session is dropped"        name:"session-ttl"`
	MaxSessions int    `default:"10000"                 help:"Most sessions held at once; least recently used goes first" name:"max-sessions"`
	LogFormat   string `default:"console"               help:"Log format: console or json"                              name:"log-format"`
}

// InProcessEvents reports whether activity events stay inside the web process.
func (o *Options) InProcessEvents() bool {
	return o.RedisAddr == ""
}

// LoggerPackage provides the zap logger.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)
		if opts.LogFormat == "json" {
			return zap.NewProduction()
		}

		return zap.NewDevelopment()
	})
}

// RedisPackage provides the redis connection settings and the redis health checker.
// Every redis user opens its own client and closes only that one: the stream
// publisher and subscriber each close the client they are given.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*redis.Options, error) {
		opts := do.MustInvoke[*Options](i)
		if opts.InProcessEvents() {
			return nil, errNoRedis
		}

		return &redis.Options{Addr: opts.RedisAddr}, nil
	})

	do.Provide(injector, func(i *do.Injector) (*health.RedisChecker, error) {
		return health.NewRedisChecker(newRedisClient(i)), nil
	})
}

func newRedisClient(i *do.Injector) *redis.Client {
	opts := *do.MustInvoke[*redis.Options](i)

	return redis.NewClient(&opts)
}

// PubSubPackage provides the activity event transport and publisher:
// an in-process channel, or redis streams when a redis address is set.
func PubSubPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.Transport, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if opts.InProcessEvents() {
			pubsub := messaging.NewInProcess(logger)

			return messaging.NewTransport(pubsub, pubsub), nil
		}

		publisher, err := messaging.NewRedisPublisher(newRedisClient(i), logger)
		if err != nil {
			return nil, err
		}

		subscriberClient := newRedisClient(i)

		subscriber, err := messaging.NewRedisSubscriber(subscriberClient, ActivityConsumerGroup, logger)
		if err != nil {
			return nil, errors.Join(err, publisher.Close(), subscriberClient.Close())
		}

		return messaging.NewTransport(publisher, subscriber), nil
	})

	do.Provide(injector, func(i *do.Injector) (*activity.Publisher, error) {
		transport := do.MustInvoke[*messaging.Transport](i)

		return activity.NewPublisher(transport.Publisher()), nil
	})
}

// ConsumerGroupPackage provides the activity consumers.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		logger := do.MustInvoke[*zap.Logger](i)
		transport := do.MustInvoke[*messaging.Transport](i)

		group := messaging.NewConsumerGroup(logger)
		for _, consumer := range activity.NewConsumers(transport.Subscriber(), activity.NewLogStore(logger), logger) {
			group.Add(consumer)
		}

		return group, nil
	})
}

// apiIdleConns bounds keep-alive connections to the single shortener API host.
const apiIdleConns = 64

// APIPackage provides the shortener API client.
func APIPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*api.Client, error) {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.MaxIdleConns = apiIdleConns
		transport.MaxIdleConnsPerHost = apiIdleConns

		return api.NewClient(
			do.MustInvoke[*Options](i).APIURL,
			api.WithHTTPClient(&http.Client{Transport: transport}),
		), nil
	})
}

// SessionPackage provides the per-session binder registry.
func SessionPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*session.Manager, error) {
		opts := do.MustInvoke[*Options](i)
		client := do.MustInvoke[*api.Client](i)
		logger := do.MustInvoke[*zap.Logger](i)

		factory := func() *view.Binder {
			return view.NewBinder(client, logger)
		}

		ttl := time.Duration(opts.SessionTTL) * time.Minute

		return session.NewManager(factory, ttl).WithMaxSessions(opts.MaxSessions), nil
	})
}

// HTTPPackage provides the router and the huma API with all routes registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*chi.Mux, error) {
		logger := do.MustInvoke[*zap.Logger](i)

		router := chi.NewMux()
		// session first so request logs carry the session id
		router.Use(middleware.Session, middleware.RequestMeta, middleware.Logging(logger))

		return router, nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		router := do.MustInvoke[*chi.Mux](i)
		logger := do.MustInvoke[*zap.Logger](i)

		humaAPI := humachi.New(router, huma.DefaultConfig("URL Shortener Front End", "1.0.0"))

		views := web.NewHandler(
			do.MustInvoke[*session.Manager](i),
			do.MustInvoke[*activity.Publisher](i),
			logger,
		)
		web.RegisterRoutes(router, humaAPI, views, web.NewPage(views, logger))

		var events health.Checker
		if !opts.InProcessEvents() {
			events = do.MustInvoke[*health.RedisChecker](i)
		}

		health.RegisterRoutes(humaAPI, health.NewHandler(do.MustInvoke[*api.Client](i), events))

		return humaAPI, nil
	})
}
