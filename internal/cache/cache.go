package cache

import (
	"sync"
	"time"
)

// ============================================================================
// CACHE SERVICE - IN-MEMORY CACHING COM TTL
// ============================================================================
// Cache thread-safe com expiração automática, usado pelas leituras paginadas
// do histórico de métricas. As chaves incluem o id do usuário como prefixo
// ("historico:<usuario_id>:...") para que qualquer escrita no registro de
// saúde invalide todas as páginas cacheadas daquele usuário via DeletePrefix.

// Item representa um elemento em cache com timestamp de expiração
type Item struct {
	Value      interface{}
	Expiration int64 // Unix timestamp em nanossegundos
}

// Cache é um armazém thread-safe de key-value com TTL
type Cache struct {
	items             map[string]Item
	mu                sync.RWMutex
	defaultExpiration time.Duration
	cleanupInterval   time.Duration
	stopCleanup       chan bool
}

// NewCache cria uma nova instância de cache com TTL padrão.
// cleanupInterval controla a limpeza periódica de itens expirados.
func NewCache(defaultExpiration, cleanupInterval time.Duration) *Cache {
	cache := &Cache{
		items:             make(map[string]Item),
		defaultExpiration: defaultExpiration,
		cleanupInterval:   cleanupInterval,
		stopCleanup:       make(chan bool),
	}

	go cache.startCleanupTimer()

	return cache
}

// Set armazena um valor com a expiração padrão
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.defaultExpiration)
}

// SetWithTTL armazena um valor com uma duração de expiração específica
func (c *Cache) SetWithTTL(key string, value interface{}, duration time.Duration) {
	var expiration int64

	if duration > 0 {
		expiration = time.Now().Add(duration).UnixNano()
	}

	c.mu.Lock()
	c.items[key] = Item{
		Value:      value,
		Expiration: expiration,
	}
	c.mu.Unlock()
}

// Get recupera um valor do cache.
// Retorna (valor, true) se existe e não expirou.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	item, found := c.items[key]
	c.mu.RUnlock()

	if !found {
		return nil, false
	}

	if item.Expiration > 0 && time.Now().UnixNano() > item.Expiration {
		c.Delete(key)
		return nil, false
	}

	return item.Value, true
}

// Delete remove uma key do cache
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// DeletePrefix remove todas as keys que começam com o prefixo dado.
// Usado para invalidar o histórico de um usuário após qualquer atualização
// do registro de saúde ("historico:42:" invalida todas as páginas do 42).
func (c *Cache) DeletePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for key := range c.items {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.items, key)
			count++
		}
	}
	return count
}

// Clear limpa completamente o cache
func (c *Cache) Clear() {
	c.mu.Lock()
	c.items = make(map[string]Item)
	c.mu.Unlock()
}

// Count retorna o número de itens em cache (inclui expirados)
func (c *Cache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stats retorna estatísticas do cache
type Stats struct {
	TotalItems   int
	ExpiredItems int
	ValidItems   int
}

// GetStats retorna estatísticas atuais do cache
func (c *Cache) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Stats{
		TotalItems: len(c.items),
	}

	now := time.Now().UnixNano()
	for _, item := range c.items {
		if item.Expiration > 0 && now > item.Expiration {
			stats.ExpiredItems++
		} else {
			stats.ValidItems++
		}
	}

	return stats
}

func (c *Cache) startCleanupTimer() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *Cache) deleteExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UnixNano()
	for key, item := range c.items {
		if item.Expiration > 0 && now > item.Expiration {
			delete(c.items, key)
		}
	}
}

// Stop interrompe a limpeza automática
func (c *Cache) Stop() {
	c.stopCleanup <- true
}

// ============================================================================
// CACHES PRÉ-CONFIGURADOS
// ============================================================================

var (
	// HistoryCache - páginas do histórico de métricas (TTL: 2 minutos).
	// TTL curto: o histórico muda a cada atualização de métrica, e a
	// invalidação explícita por prefixo cobre as escritas deste processo.
	HistoryCache *Cache
)

// InitCaches inicializa os caches do processo
func InitCaches() {
	HistoryCache = NewCache(2*time.Minute, 5*time.Minute)
}

// StopCaches interrompe todos os caches
func StopCaches() {
	if HistoryCache != nil {
		HistoryCache.Stop()
	}
}
