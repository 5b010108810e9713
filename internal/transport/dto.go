package transport

type DeleteManyRequest struct {
	IDs []string `json:"ids"`
}

type DeleteManyResponse struct {
	DeletedCount int64 `json:"deletedCount"`
}

type StatusRequest struct {
	Status string `json:"status"`
}
