// internal/services/client_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/readify-backend/internal/models"
	"github.com/javajoker/readify-backend/internal/repository"
	"github.com/javajoker/readify-backend/internal/utils"
)

type ClientService struct {
	store repository.Store
}

type CreateClientRequest struct {
	Name    string `json:"name" validate:"required,notblank,max=255"`
	Address string `json:"address" validate:"required,notblank"`
	PhoneNo string `json:"phoneNo" validate:"required,phone"`
}

func NewClientService(store repository.Store) *ClientService {
	return &ClientService{store: store}
}

func (s *ClientService) AddClient(ctx context.Context, accountID uuid.UUID, req *CreateClientRequest) (*models.Client, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Address = strings.TrimSpace(req.Address)
	req.PhoneNo = strings.TrimSpace(req.PhoneNo)

	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	if _, err := requireAccount(ctx, s.store, accountID); err != nil {
		return nil, err
	}

	client := &models.Client{
		AccountID: accountID,
		Name:      req.Name,
		Address:   req.Address,
		PhoneNo:   req.PhoneNo,
		Orders:    []models.ClientOrderRef{},
	}

	if err := s.store.CreateClient(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"account_id": accountID,
		"client_id":  client.ID,
	}).Info("Client added")

	return client, nil
}

func (s *ClientService) ListClients(ctx context.Context, accountID uuid.UUID) ([]models.Client, error) {
	if _, err := requireAccount(ctx, s.store, accountID); err != nil {
		return nil, err
	}

	clients, err := s.store.ListClients(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	if clients == nil {
		clients = []models.Client{}
	}
	for i := range clients {
		if clients[i].Orders == nil {
			clients[i].Orders = []models.ClientOrderRef{}
		}
	}
	return clients, nil
}

// DeleteClient removes the client and its order back-references. Orders
// placed for the client are kept; they list with a null client afterwards.
func (s *ClientService) DeleteClient(ctx context.Context, accountID, clientID uuid.UUID) error {
	return s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.LockAccount(ctx, accountID); err != nil {
			if errors.Is(err, repository.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if err := tx.DeleteClient(ctx, accountID, clientID); err != nil {
			if errors.Is(err, repository.ErrRecordNotFound) {
				return ErrClientNotFound
			}
			return fmt.Errorf("failed to delete client: %w", err)
		}

		logrus.WithFields(logrus.Fields{
			"account_id": accountID,
			"client_id":  clientID,
		}).Info("Client deleted")
		return nil
	})
}
