package email

const (
	subjectVerification           = "Vérifiez votre adresse e-mail"
	subjectPasswordReset          = "Réinitialisation de votre mot de passe"
	subjectPaymentConfirmationFmt = "Confirmation de paiement — %s"
	subjectDossierCompletedFmt    = "Votre dossier %s est finalisé"
	subjectAdminNewDossierFmt     = "Nouveau dossier payé — %s"
)
