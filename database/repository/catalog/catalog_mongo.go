package catalogRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slotify/database"
	"slotify/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCatalogRepo implements CatalogRepository using MongoDB.
type MongoCatalogRepo struct {
	resourceColl   *mongo.Collection
	capabilityColl *mongo.Collection
	locationColl   *mongo.Collection
}

// NewMongoCatalogRepo constructs a new instance of MongoCatalogRepo.
func NewMongoCatalogRepo() CatalogRepository {
	db := database.DB()
	return &MongoCatalogRepo{
		resourceColl:   db.Collection("resources"),
		capabilityColl: db.Collection("capabilities"),
		locationColl:   db.Collection("locations"),
	}
}

func (repo *MongoCatalogRepo) GetResource(ctx context.Context, id string) (*models.Resource, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var resource models.Resource
	if err := repo.resourceColl.FindOne(ctx, bson.M{"id": id}).Decode(&resource); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownResource, id)
		}
		return nil, fmt.Errorf("error fetching resource %s: %w", id, err)
	}
	return &resource, nil
}

func (repo *MongoCatalogRepo) GetCapability(ctx context.Context, id string) (*models.Capability, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var capability models.Capability
	if err := repo.capabilityColl.FindOne(ctx, bson.M{"id": id}).Decode(&capability); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCapability, id)
		}
		return nil, fmt.Errorf("error fetching capability %s: %w", id, err)
	}
	return &capability, nil
}

func (repo *MongoCatalogRepo) GetLocation(ctx context.Context, id string) (*models.Location, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var location models.Location
	if err := repo.locationColl.FindOne(ctx, bson.M{"id": id}).Decode(&location); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownLocation, id)
		}
		return nil, fmt.Errorf("error fetching location %s: %w", id, err)
	}
	return &location, nil
}

// EnsureIndexes creates the unique id index on every catalog collection.
func (repo *MongoCatalogRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	model := mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_id"),
	}
	for _, coll := range []*mongo.Collection{repo.resourceColl, repo.capabilityColl, repo.locationColl} {
		if _, err := coll.Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("failed to create catalog index on %s: %w", coll.Name(), err)
		}
	}
	return nil
}
