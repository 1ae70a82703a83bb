// Package docs Visitor Geolocation API.
//
// Сервис геолокации посетителей: определяет IP клиента за прокси, получает
// геолокацию у HTTP-провайдера (fallback - локальная база MaxMind), оценивает
// радиус точности по полигону доверия провайдера, пишет журнал визитов и
// отправляет уведомления в чат-вебхуки через Redis Stream.
//
// Основные возможности:
// - Геолокация текущего посетителя и произвольного IP
// - Оценка радиуса точности по полигону (haversine от центроида)
// - Журнал визитов и статистика
// - Уведомления в Discord/Slack
//
//	Schemes: http, https
//	BasePath: /
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package docs
