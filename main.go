package main

import (
	"context"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	config "github.com/phillip/event-marketplace-go/config"
	core "github.com/phillip/event-marketplace-go/core"
	notify "github.com/phillip/event-marketplace-go/notify"
	realtime "github.com/phillip/event-marketplace-go/realtime"
	routes "github.com/phillip/event-marketplace-go/routes"
	store "github.com/phillip/event-marketplace-go/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	if err := cfg.ConnectMongo(ctx); err != nil {
		log.Fatalf("mongo: %v", err)
	}
	defer cfg.MongoClient.Disconnect(ctx)

	if err := store.EnsureIndexes(ctx, cfg.DB()); err != nil {
		log.Fatalf("indexes: %v", err)
	}

	var publisher *realtime.Publisher
	if cfg.AMQPURL != "" {
		publisher, err = realtime.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatalf("rabbitmq: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("AMQP_URL not set, realtime push disabled")
	}

	st := store.NewMongo(cfg.DB())
	dispatcher := notify.NewDispatcher(cfg.DB(), publisher)
	counters := core.NewCounters(st)
	bookings := core.NewBookings(st, counters, dispatcher)
	rsvps := core.NewRSVPs(st, counters, dispatcher)
	reviews := core.NewReviews(st, counters, dispatcher)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Authorization", "Content-Type", "If-None-Match"},
	}))

	routes.SetupRoutes(r, cfg, bookings, rsvps, reviews, counters)

	log.Printf("listening on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
