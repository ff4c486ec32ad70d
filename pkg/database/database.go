package database

import (
	"context"
	"errors"
	"time"

	"github.com/optimode/paxstats/pkg/util"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoInstance struct {
	Client   *mongo.Client
	Database *mongo.Database
	Hosts    []string
}

var MongoGlobalInstance *MongoInstance

var ErrNotConnected = errors.New("database not connected")

const defaultMongoConnectionString = "mongodb://localhost:27017/"
const defaultMongoDatabase = "optidb"

func Connect() error {
	env := util.GetEnvironmentVariables()

	connectionString := util.GetEnvironmentVariable(env, "MONGODB_CONNECTION", defaultMongoConnectionString)
	dbName := util.GetEnvironmentVariable(env, "MONGODB_DATABASE", defaultMongoDatabase)

	instance, err := ConnectMongoDB(connectionString, dbName)
	if err != nil {
		return err
	}

	MongoGlobalInstance = instance

	log.Debug().Str("database", dbName).Msg("Connected to MongoDB")

	return nil
}

func ConnectMongoDB(connectionString string, dbName string) (*MongoInstance, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Reports only ever read, secondaries are fine
	clientOptions := options.Client().
		ApplyURI(connectionString).
		SetReadPreference(readpref.SecondaryPreferred()).
		SetAppName("paxstats")

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	err = client.Ping(ctx, nil)
	if err != nil {
		return nil, err
	}

	return &MongoInstance{
		Client:   client,
		Database: client.Database(dbName),
		Hosts:    clientOptions.Hosts,
	}, nil
}

func GetCollection(collectionName string) *mongo.Collection {
	return MongoGlobalInstance.Database.Collection(collectionName)
}

func GetDatabase() (*mongo.Database, error) {
	if MongoGlobalInstance == nil {
		return nil, ErrNotConnected
	}

	return MongoGlobalInstance.Database, nil
}

func Disconnect(ctx context.Context) error {
	if MongoGlobalInstance == nil {
		return nil
	}

	err := MongoGlobalInstance.Client.Disconnect(ctx)
	MongoGlobalInstance = nil

	return err
}
