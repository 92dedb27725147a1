package models

type ReplaceSubscriptionsRequest struct {
	RegionIDs []string `json:"regionIds"`
}

type GetSubscriptionsResponse struct {
	RegionIDs []string `json:"regionIds"`
}

type CreatePushSubscriptionRequest struct {
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
}
