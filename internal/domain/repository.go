package domain

// RecordStore описывает хранилище упорядоченного списка записей одного типа.
// Каждая операция читает или перезаписывает весь список целиком.
type RecordStore[T any] interface {
	// Name возвращает имя хранилища (имя файла) для сообщений и метрик.
	Name() string
	// Load возвращает все записи в порядке вставки.
	Load() ([]T, error)
	// Save полностью перезаписывает хранилище.
	Save(records []T) error
	// Append эквивалентен Load + добавление в конец + Save.
	Append(record T) error
}

type (
	ProductStore  = RecordStore[Product]
	SupplierStore = RecordStore[Supplier]
	OrderStore    = RecordStore[Order]
	JournalStore  = RecordStore[JournalEntry]
)
