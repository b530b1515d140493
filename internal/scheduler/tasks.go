package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskPaymentConfirmationEmail = "payments.confirmation_email"

const TaskDossierPDFGenerate = "dossiers.pdf_generate"

type PaymentConfirmationPayload struct {
	PaymentID     string `json:"paymentId"`
	DossierID     string `json:"dossierId"`
	DossierType   string `json:"dossierType"`
	UserID        string `json:"userId"`
	AmountCents   int64  `json:"amountCents"`
	CustomerEmail string `json:"customerEmail"`
}

type DossierPDFPayload struct {
	DossierID   string `json:"dossierId"`
	DossierType string `json:"dossierType"`
	UserID      string `json:"userId"`
}

func NewPaymentConfirmationTask(payload PaymentConfirmationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPaymentConfirmationEmail, data), nil
}

func ParsePaymentConfirmationPayload(task *asynq.Task) (PaymentConfirmationPayload, error) {
	var payload PaymentConfirmationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return PaymentConfirmationPayload{}, err
	}
	return payload, nil
}

func NewDossierPDFTask(payload DossierPDFPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDossierPDFGenerate, data), nil
}

func ParseDossierPDFPayload(task *asynq.Task) (DossierPDFPayload, error) {
	var payload DossierPDFPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return DossierPDFPayload{}, err
	}
	return payload, nil
}
