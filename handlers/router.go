package handlers

import (
	"net/http"

	"powerauthserver/middleware"
	"powerauthserver/services"
	"powerauthserver/utils"
)

// Services 라우터가 노출하는 서비스 묶음
type Services struct {
	Applications  services.ApplicationService
	Activations   services.ActivationService
	Signatures    services.SignatureService
	Recovery      services.RecoveryService
	Encryption    services.EncryptionService
	TemporaryKeys services.TemporaryKeyService
}

type route struct {
	path    string
	scope   string
	handler http.HandlerFunc
}

// RegisterRoutes /rest/v3 API 를 mux 에 등록한다. issuer 가 nil 이면 인증 없이 연다
func RegisterRoutes(mux *http.ServeMux, svc Services, issuer *utils.TokenIssuer) {
	activation := NewActivationHandler(svc.Activations)
	signature := NewSignatureHandler(svc.Signatures)
	recovery := NewRecoveryHandler(svc.Recovery)
	application := NewApplicationHandler(svc.Applications)
	encryption := NewEncryptionHandler(svc.Encryption, svc.TemporaryKeys)

	routes := []route{
		{"/rest/v3/activation/init", utils.ScopeActivation, activation.Init},
		{"/rest/v3/activation/prepare", utils.ScopeActivation, activation.Prepare},
		{"/rest/v3/activation/create", utils.ScopeActivation, activation.Create},
		{"/rest/v3/activation/commit", utils.ScopeActivation, activation.Commit},
		{"/rest/v3/activation/otp/update", utils.ScopeActivation, activation.UpdateOtp},
		{"/rest/v3/activation/status", utils.ScopeActivation, activation.Status},
		{"/rest/v3/activation/block", utils.ScopeActivation, activation.Block},
		{"/rest/v3/activation/unblock", utils.ScopeActivation, activation.Unblock},
		{"/rest/v3/activation/remove", utils.ScopeActivation, activation.Remove},
		{"/rest/v3/activation/list", utils.ScopeActivation, activation.List},
		{"/rest/v3/activation/lookup", utils.ScopeActivation, activation.Lookup},
		{"/rest/v3/activation/history", utils.ScopeActivation, activation.History},
		{"/rest/v3/activation/recovery/create", utils.ScopeRecovery, activation.RecoveryCreate},
		{"/rest/v3/activation/flags/list", utils.ScopeActivation, activation.ListFlags},
		{"/rest/v3/activation/flags/create", utils.ScopeActivation, activation.AddFlags},
		{"/rest/v3/activation/flags/remove", utils.ScopeActivation, activation.RemoveFlags},

		{"/rest/v3/signature/verify", utils.ScopeSignature, signature.Verify},
		{"/rest/v3/signature/offline/verify", utils.ScopeSignature, signature.VerifyOffline},
		{"/rest/v3/signature/offline/personalized/create", utils.ScopeSignature, signature.PersonalizedPayload},
		{"/rest/v3/signature/offline/non-personalized/create", utils.ScopeSignature, signature.NonPersonalizedPayload},
		{"/rest/v3/signature/ecdsa/verify", utils.ScopeSignature, signature.VerifyECDSA},
		{"/rest/v3/signature/audit", utils.ScopeSignature, signature.AuditLog},

		{"/rest/v3/recovery/create", utils.ScopeRecovery, recovery.Create},
		{"/rest/v3/recovery/confirm", utils.ScopeRecovery, recovery.Confirm},
		{"/rest/v3/recovery/lookup", utils.ScopeRecovery, recovery.Lookup},
		{"/rest/v3/recovery/revoke", utils.ScopeRecovery, recovery.Revoke},
		{"/rest/v3/recovery/config/detail", utils.ScopeRecovery, recovery.GetConfig},
		{"/rest/v3/recovery/config/update", utils.ScopeAdmin, recovery.UpdateConfig},

		{"/rest/v3/ecies/decryptor", utils.ScopeEncryption, encryption.Decryptor},
		{"/rest/v3/keystore/create", utils.ScopeEncryption, encryption.CreateTemporaryKey},
		{"/rest/v3/keystore/remove", utils.ScopeEncryption, encryption.RemoveTemporaryKey},

		{"/rest/v3/application/create", utils.ScopeAdmin, application.Create},
		{"/rest/v3/application/list", utils.ScopeAdmin, application.List},
		{"/rest/v3/application/detail", utils.ScopeAdmin, application.Detail},
		{"/rest/v3/application/version/create", utils.ScopeAdmin, application.CreateVersion},
		{"/rest/v3/application/version/support", utils.ScopeAdmin, application.SetVersionSupport},
		{"/rest/v3/application/callback/create", utils.ScopeAdmin, application.CreateCallback},
		{"/rest/v3/application/callback/list", utils.ScopeAdmin, application.ListCallbacks},
		{"/rest/v3/application/callback/remove", utils.ScopeAdmin, application.RemoveCallback},
	}

	for _, rt := range routes {
		mux.HandleFunc("POST "+rt.path, middleware.ChainMiddleware(rt.handler,
			middleware.MetricsMiddleware(rt.path),
			middleware.AuthMiddleware(issuer),
			middleware.RequireScopes(rt.scope),
		))
	}
}
