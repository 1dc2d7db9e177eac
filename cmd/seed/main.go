package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"workshop-backend/internal/auth"
	"workshop-backend/internal/config"
	"workshop-backend/internal/db"
	"workshop-backend/internal/mechanics"
	"workshop-backend/internal/models"

	"github.com/spf13/pflag"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	hashPassword := pflag.Bool("hash-password", false, "print a bcrypt hash of ADMIN_PASSWORD for ADMIN_PASSWORD_HASH and exit")
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	if *hashPassword {
		hash, err := auth.HashPassword(cfg.AdminPassword)
		if err != nil {
			log.Fatalf("hash admin password: %v", err)
		}
		fmt.Fprintln(os.Stdout, hash)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB, time.Duration(cfg.MongoTimeoutSec)*time.Second)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		log.Fatal(err)
	}

	inserted, err := mechanics.NewRepository(cols.Mechanics).UpsertByName(ctx, models.DefaultMechanics(time.Now().UTC()))
	if err != nil {
		log.Fatalf("seed mechanics: %v", err)
	}
	log.Printf("seed mechanics: %d inserted", inserted)

	// The counter starts at the highest stored seq so existing bookings keep
	// their order.
	var last struct {
		Seq int64 `bson:"seq"`
	}
	err = cols.Appointments.FindOne(ctx, bson.M{},
		options.FindOne().SetSort(bson.D{{Key: "seq", Value: -1}}).SetProjection(bson.M{"seq": 1}),
	).Decode(&last)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		log.Fatalf("seed counter: %v", err)
	}
	_, err = cols.Counters.UpdateOne(ctx,
		bson.M{"_id": "appointments"},
		bson.M{"$max": bson.M{"value": last.Seq}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		log.Fatalf("seed counter: %v", err)
	}

	log.Println("seed completed")
}
