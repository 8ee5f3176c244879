package core

// Domain reference data. The catalog is fixed: product types, their allowed
// subtypes, and the storage class each type requires. Values are kept in
// Russian to match the production data set.

const (
	ProductMilitaryAircraft = "Военные самолеты"
	ProductHeavyMachinery   = "Тяжелая техника"
	ProductWeapons          = "Оружие"
	ProductAmmunitionGear   = "Амуниция"
	ProductCaliberRounds    = "Боеприпасы различного калибра"
	ProductSurfaceToAir     = "Ракеты класса земля-воздух"
	ProductAirToAir         = "Ракеты класса воздух-воздух"
	ProductAirToSurface     = "Ракеты класса воздух-земля"
	ProductIntercontinental = "Межконтинентальные ракеты"
)

var productSubtypes = map[string][]string{
	ProductMilitaryAircraft: {
		"Истребители", "Бомбардировщики", "Разведчики", "Транспортные самолеты",
		"Беспилотные летательные аппараты (БПЛА)", "Разведывательные вертолеты",
		"Ударные вертолеты", "Патрульные самолеты",
		"Специальные самолеты (например, для борьбы с беспилотниками)",
		"Учебно-тренировочные самолеты", "Танкеры (для воздушной дозаправки)",
		"Эвакуационные самолеты",
	},
	ProductHeavyMachinery: {
		"Ракетные комплексы", "РСЗО", "Бронетранспортеры", "Танки", "Бронеавтомобили",
		"Самоходные артиллерийские установки", "Тяжелые гаубицы", "Тяжелые минометы",
		"Разведывательные машины", "Инженерная техника",
	},
	ProductWeapons: {
		"Тактические винтовки", "Штурмовые винтовки", "Пистолеты-пулеметы",
		"Пистолеты", "Ручные пулеметы", "Снайперские и пехотные винтовки",
	},
	ProductAmmunitionGear: {
		"Бронежилеты стандартного уровня защиты", "Бронежилеты с улучшенной защитой",
		"Бронежилеты с керамическими пластинами", "Бронежилеты для общевойсковых подразделений",
		"Бронежилеты для специальных операций (ССО)", "Кевларовые бронежилеты",
		"Тканевые бронежилеты", "Летные бронежилеты для летного состава",
		"Бронежилеты для бронетехники", "Каски боевые стандартного уровня защиты",
		"Каски боевые с улучшенной защитой",
		"Каски боевые с интегрированными коммуникационными средствами",
		"Каски боевые для общевойсковых подразделений",
		"Каски боевые для специальных операций (ССО)",
		"Каски боевые для танкистов", "Каски боевые для пилотов",
		"Каски боевые для десантников",
		"Гранаты дымовые", "Гранаты осколочные", "Гранаты огнемётные",
		"Гранаты штурмовые", "Гранаты светозвуковые", "Гранаты противотанковые",
		"Гранаты реактивные", "Гранаты ударные", "Гранаты газовые",
	},
	ProductCaliberRounds: {
		"Патроны калибра 5,45 мм", "Патроны калибра 7,62 мм", "Патроны калибра 12,7 мм",
		"Патроны калибра 14,5 мм", "Снаряды калибра 30 мм", "Снаряды калибра 85 мм",
		"Снаряды калибра 125 мм", "Снаряды калибра 152 мм", "Снаряды калибра 203 мм",
		"Снаряды калибра 240 мм", "Снаряды калибра 300 мм",
	},
	ProductSurfaceToAir: {
		"Зенитные ракетные комплексы с головками самонаведения по радиолокационной разведке (ГСН)",
		"Зенитные ракетные комплексы с головками самонаведения по радару",
		"Зенитные ракетные комплексы с инфракрасными головками самонаведения",
		"Зенитные ракетные комплексы с лазерными головками самонаведения",
		"Переносные зенитные ракетные комплексы с радиолокационным наведением",
		"Стрелково-пушечные зенитные комплексы с головками самонаведения по радару",
	},
	ProductAirToAir: {
		"Ближнего радиуса действия с ИК наведением",
		"Ближнего радиуса действия с радиолокационным наведением",
		"Среднего радиуса действия с радиолокационным наведением",
		"Дальнего радиуса действия с радиолокационным наведением",
		"Ракеты с активной радиолокационной головкой",
		"Ракеты с полуактивной радиолокационной головкой",
		"Ракеты с тепловой головкой", "Ракеты с радиоволновой головкой",
	},
	ProductAirToSurface: {
		"Управляемые авиационные бомбы", "Противокорабельные ракеты",
		"Управляемые ракетные комплексы наземного базирования", "Ракеты с ИК наведением",
		"Ракеты с радиолокационным наведением", "Ракеты с лазерным наведением",
		"Ракеты с ТВ наведением", "Ракеты с инерциальным наведением",
	},
	ProductIntercontinental: {
		"Баллистические ракеты с одной боеголовкой",
		"Баллистические ракеты с множественными боеголовками",
		"Маневрирующие баллистические ракеты",
		"Баллистические ракеты с ядерным зарядом",
		"Баллистические ракеты с термоядерным зарядом",
		"Баллистические ракеты с конвенциональными боеприпасами",
		"Баллистические ракеты с гиперзвуковыми боеголовками",
		"Межконтинентальные ракеты-носители космических аппаратов",
		"Баллистические ракеты с разделяющимися блоками",
	},
}

var warehouseTypes = []WarehouseType{
	WarehouseStandard,
	WarehouseVehicleHangar,
	WarehouseAircraftHangar,
}

var customerTypes = []string{
	"Государственная организация",
	"Частная компания",
	"Иностранное государство",
}

var contractTypes = []string{
	"Внутренний",
	"Экспортный",
}

var contractCurrencies = []string{"RUB", "USD", "EUR"}

// IsValidProductType reports whether productType is in the catalog.
func IsValidProductType(productType string) bool {
	_, ok := productSubtypes[productType]
	return ok
}

// IsValidProductSubtype reports whether productSubtype is allowed for
// productType.
func IsValidProductSubtype(productType, productSubtype string) bool {
	for _, s := range productSubtypes[productType] {
		if s == productSubtype {
			return true
		}
	}
	return false
}

// RequiredWarehouseType returns the storage class productType must be kept
// in, or WarehouseAny when the type has no restriction.
func RequiredWarehouseType(productType string) WarehouseType {
	switch productType {
	case ProductMilitaryAircraft:
		return WarehouseAircraftHangar
	case ProductHeavyMachinery:
		return WarehouseVehicleHangar
	case ProductWeapons, ProductAmmunitionGear:
		return WarehouseStandard
	default:
		return WarehouseAny
	}
}

// CompatibleStorage reports whether productType may be stored in a warehouse
// of type wt.
func CompatibleStorage(productType string, wt WarehouseType) bool {
	required := RequiredWarehouseType(productType)
	return required == WarehouseAny || required == wt
}

// IsValidWarehouseType reports whether wt is a known storage class.
func IsValidWarehouseType(wt WarehouseType) bool {
	for _, t := range warehouseTypes {
		if t == wt {
			return true
		}
	}
	return false
}

// IsValidCustomerType reports whether t is a known customer category.
func IsValidCustomerType(t string) bool {
	for _, c := range customerTypes {
		if c == t {
			return true
		}
	}
	return false
}

// IsValidContractType reports whether t is a known contract kind.
func IsValidContractType(t string) bool {
	for _, c := range contractTypes {
		if c == t {
			return true
		}
	}
	return false
}

// IsValidCurrency reports whether c is an accepted settlement currency.
func IsValidCurrency(c string) bool {
	for _, cur := range contractCurrencies {
		if cur == c {
			return true
		}
	}
	return false
}

// IsValidContractStatus reports whether s is a known lifecycle state.
func IsValidContractStatus(s ContractStatus) bool {
	switch s {
	case ContractPending, ContractInProgress, ContractCompleted, ContractCancelled:
		return true
	}
	return false
}
