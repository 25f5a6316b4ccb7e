// Package handler contains the gin handlers of the public and admin HTTP API.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"textorigin/internal/repository"
	"textorigin/internal/service"
)

// Response messages. The admin panel shows them verbatim.
const (
	msgNoText          = "Kein Text bereitgestellt."
	msgModelMissing    = "Modell ist nicht verfügbar. Bitte zuerst trainieren."
	msgPredictFailed   = "Ein Fehler bei der Vorhersage ist aufgetreten."
	msgTextAndLabel    = "Text und Label sind erforderlich."
	msgInvalidLabel    = "Ungültiges Label. Erlaubt sind 'menschlich' und 'ki'."
	msgAdded           = "Daten erfolgreich zur Trainingswarteschlange hinzugefügt!"
	msgDeleteNeedsText = "Text zum Löschen ist erforderlich."
	msgDeleted         = "Daten erfolgreich gelöscht."
	msgTextNotFound    = "Text nicht gefunden."
	msgRetrained       = "Modell wurde erfolgreich neu trainiert."
	msgRetrainFailed   = "Ein Fehler beim Neu-Trainieren ist aufgetreten: "
	msgInsufficient    = "Nicht genügend Trainingsdaten: beide Klassen benötigen mindestens einen Text."
	msgLoginOK         = "Login erfolgreich"
	msgLogoutOK        = "Logout erfolgreich"
	msgPasswordMissing = "Passwort ist erforderlich."
	msgWrongPassword   = "Falsches Passwort."
	msgTooManyLogins   = "Zu viele Anmeldeversuche. Bitte später erneut versuchen."
	msgJobNotFound     = "Retrain-Job nicht gefunden."
	msgInternal        = "Interner Fehler."
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrEmptyText), errors.Is(err, service.ErrInvalidLabel):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrTokenRevoked):
		return http.StatusUnauthorized
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, service.ErrJobNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func abortJSON(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
