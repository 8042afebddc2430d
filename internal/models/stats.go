package models

// ProfileStats - статистика пользователя для профиля
type ProfileStats struct {
	TotalReports    int `json:"total_reports"`
	ResolvedReports int `json:"resolved_reports"`
}

// Overview - сводка кабинета супер-администратора
type Overview struct {
	TotalIncidents      int `json:"total_incidents"`
	PendingIncidents    int `json:"pending_incidents"`
	InProgressIncidents int `json:"in_progress_incidents"`
	ResolvedIncidents   int `json:"resolved_incidents"`
	RejectedIncidents   int `json:"rejected_incidents"`
	TotalAdmins         int `json:"total_admins"`
	TotalUsers          int `json:"total_users"`
}

// ExportFile - выгрузка отчетов для скачивания
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}
