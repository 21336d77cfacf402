package domain

import "fmt"

// DecreaseStock списывает qty со склада. Метод не синхронизирован: вызывающий
// обязан удерживать лок на товар, если возможен конкурентный доступ.
func (p *Product) DecreaseStock(qty int64) error {
	if p.StockQuantity < qty {
		return fmt.Errorf("%w: product %d has %d, requested %d",
			ErrInsufficientStock, p.ID, p.StockQuantity, qty)
	}
	p.StockQuantity -= qty
	return nil
}

// IncreaseStock возвращает qty на склад (компенсация при отмене заказа).
func (p *Product) IncreaseStock(qty int64) {
	p.StockQuantity += qty
}
