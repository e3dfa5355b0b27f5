package materialgen

import (
	"net/http"

	"github.com/jmoiron/sqlx"

	"mfg/respond"
)

type generateRequest struct {
	RuleID    int64 `json:"ruleId"`
	ProductID int64 `json:"productId"`
}

// GenerateMaterialHandler は POST {ruleId, productId} で物料を生成します。
func GenerateMaterialHandler(db *sqlx.DB) http.HandlerFunc {
	svc := NewService(db)
	return func(w http.ResponseWriter, r *http.Request) {
		if !respond.RequireMethod(w, r, http.MethodPost) {
			return
		}
		var req generateRequest
		if !respond.Decode(w, r, &req) {
			return
		}
		result, err := svc.Generate(r.Context(), req.RuleID, req.ProductID)
		if err != nil {
			respond.Error(w, r, "generate material", err)
			return
		}
		status := http.StatusOK
		if result.Created {
			status = http.StatusCreated
		}
		respond.JSON(w, status, result)
	}
}
