package services

import "sync"

// keyedMutex даёт взаимное исключение по ключу пользователя.
// Create, VerifyPayment и Cancel не идемпотентны на границе с платёжным
// сервисом, поэтому два конкурентных вызова для одного пользователя
// не должны пройти проверки одновременно.
type keyedMutex struct {
	mus sync.Map
}

// Lock блокирует ключ и возвращает функцию разблокировки.
func (k *keyedMutex) Lock(key string) func() {
	v, _ := k.mus.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
