package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"backend/internal/fiscalcode"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateClientRequest struct {
	FirstName  string `json:"nome" binding:"required"`
	LastName   string `json:"cognome" binding:"required"`
	FiscalCode string `json:"codice_fiscale" binding:"required"`
	Address    string `json:"indirizzo"`
	City       string `json:"citta"`
	PostalCode string `json:"cap"`
}

type UpdateClientRequest struct {
	FirstName  *string `json:"nome"`
	LastName   *string `json:"cognome"`
	FiscalCode *string `json:"codice_fiscale"`
	Address    *string `json:"indirizzo"`
	City       *string `json:"citta"`
	PostalCode *string `json:"cap"`
}

// --- Interface ---

type ClientService interface {
	CreateClient(ctx context.Context, req CreateClientRequest) (*model.Client, error)
	UpdateClient(ctx context.Context, id string, req UpdateClientRequest) (*model.Client, error)
	DeleteClient(ctx context.Context, id string) error
	GetClient(ctx context.Context, id string) (*model.Client, error)
	GetClients(ctx context.Context, search string, offset, limit int) ([]model.Client, int64, error)
}

type clientService struct {
	clientRepo repository.ClientRepository
	txManager  repository.TransactionManager
}

func NewClientService(clientRepo repository.ClientRepository, txManager repository.TransactionManager) ClientService {
	return &clientService{clientRepo: clientRepo, txManager: txManager}
}

// --- Implementation ---

func (s *clientService) CreateClient(ctx context.Context, req CreateClientRequest) (*model.Client, error) {
	if !fiscalcode.IsValid(req.FiscalCode) {
		return nil, validationError("Codice fiscale errato.")
	}

	client := model.Client{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		FiscalCode: normalizeFiscalCode(req.FiscalCode),
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
	}

	if err := s.clientRepo.Create(ctx, &client); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflictError("Esiste già un cliente con questo codice fiscale.")
		}
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &client, nil
}

func (s *clientService) UpdateClient(ctx context.Context, id string, req UpdateClientRequest) (*model.Client, error) {
	clientID, err := parseClientID(id)
	if err != nil {
		return nil, err
	}

	if req.FiscalCode != nil && !fiscalcode.IsValid(*req.FiscalCode) {
		return nil, validationError("Codice fiscale errato.")
	}

	var client *model.Client
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		client, findErr = s.clientRepo.FindByID(txCtx, clientID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return notFoundError("Cliente non trovato.")
			}
			return fmt.Errorf("failed to load client: %w", findErr)
		}

		if req.FirstName != nil {
			client.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			client.LastName = *req.LastName
		}
		if req.FiscalCode != nil {
			client.FiscalCode = normalizeFiscalCode(*req.FiscalCode)
		}
		if req.Address != nil {
			client.Address = *req.Address
		}
		if req.City != nil {
			client.City = *req.City
		}
		if req.PostalCode != nil {
			client.PostalCode = *req.PostalCode
		}

		if updateErr := s.clientRepo.Update(txCtx, client); updateErr != nil {
			if errors.Is(updateErr, gorm.ErrDuplicatedKey) {
				return conflictError("Esiste già un cliente con questo codice fiscale.")
			}
			return fmt.Errorf("failed to update client: %w", updateErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return client, nil
}

// DeleteClient removes a client unless invoices reference it; in that
// case nothing is touched and a domain error is returned.
func (s *clientService) DeleteClient(ctx context.Context, id string) error {
	clientID, err := parseClientID(id)
	if err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, findErr := s.clientRepo.FindByID(txCtx, clientID); findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return notFoundError("Cliente non trovato.")
			}
			return fmt.Errorf("failed to load client: %w", findErr)
		}

		invoiceCount, countErr := s.clientRepo.CountInvoices(txCtx, clientID)
		if countErr != nil {
			return fmt.Errorf("failed to count invoices: %w", countErr)
		}
		if invoiceCount > 0 {
			return conflictError("Impossibile eliminare un cliente con fatture associate.")
		}

		if deleteErr := s.clientRepo.Delete(txCtx, clientID); deleteErr != nil {
			// The FK restraint can still fire if an invoice lands
			// between the count and the delete.
			if errors.Is(deleteErr, gorm.ErrForeignKeyViolated) {
				return conflictError("Impossibile eliminare un cliente con fatture associate.")
			}
			return fmt.Errorf("failed to delete client: %w", deleteErr)
		}
		return nil
	})
}

func (s *clientService) GetClient(ctx context.Context, id string) (*model.Client, error) {
	clientID, err := parseClientID(id)
	if err != nil {
		return nil, err
	}

	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("Cliente non trovato.")
		}
		return nil, fmt.Errorf("failed to load client: %w", err)
	}
	return client, nil
}

func (s *clientService) GetClients(ctx context.Context, search string, offset, limit int) ([]model.Client, int64, error) {
	clients, total, err := s.clientRepo.List(ctx, search, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, total, nil
}

// --- Helpers ---

func parseClientID(id string) (uuid.UUID, error) {
	clientID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, validationError("Identificativo cliente non valido.")
	}
	return clientID, nil
}

func normalizeFiscalCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
